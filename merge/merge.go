package merge

import (
	"fmt"
	"log/slog"

	"pipeconf/node"
)

// Policy is the merge engine's static configuration. It is part of the
// engine, not of user documents.
type Policy struct {
	// KeyedLists maps a sequence's structural path to the field that
	// identifies its elements. Sequences on these paths merge element-wise
	// by identifier instead of being replaced wholesale.
	KeyedLists map[string]string

	// Removable marks paths where a null override deletes the key from
	// the result. Everywhere else null is an ordinary scalar override, so
	// documents can still set an option to null on purpose.
	Removable map[string]bool
}

// DefaultPolicy returns the policy for the built-in schema: regressor
// lists merge by Name, and nothing is removable.
func DefaultPolicy() Policy {
	return Policy{
		KeyedLists: map[string]string{
			"nuisance_corrections.2-nuisance_regression.Regressors": "Name",
		},
		Removable: map[string]bool{},
	}
}

// Engine merges an override tree into a base tree under per-node-kind
// rules. It never fails on well-formed trees; structural surprises (kind
// mismatches) are resolved in the override's favor and logged, not
// rejected, since a derived document may intentionally collapse a
// structured option into a simple toggle.
type Engine struct {
	policy  Policy
	logger  *slog.Logger
	tracker *Tracker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for structural-override and
// duplicate-identifier reports.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTracker enables provenance recording on the given tracker.
func WithTracker(t *Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// New creates a merge engine with the given policy.
func New(policy Policy, opts ...Option) *Engine {
	e := &Engine{policy: policy, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge combines base and override into a new tree. Neither input is
// mutated.
func (e *Engine) Merge(base, override *node.Node) *node.Node {
	return e.merge(base, override, node.Path{})
}

func (e *Engine) merge(base, override *node.Node, path node.Path) *node.Node {
	switch {
	case base.Kind() == node.KindMapping && override.Kind() == node.KindMapping:
		return e.mergeMapping(base, override, path)

	case base.Kind() == node.KindSequence && override.Kind() == node.KindSequence:
		if field, ok := e.policy.KeyedLists[path.String()]; ok {
			return e.mergeKeyed(base, override, field, path)
		}
		// Unkeyed sequences are the exact operator-supplied set; the
		// override replaces the base outright.
		e.record(path)
		return override.Clone()

	default:
		if base.Kind() != override.Kind() {
			e.logger.Debug("structural override",
				"path", path.String(),
				"base_kind", base.Kind().String(),
				"override_kind", override.Kind().String(),
			)
		}
		e.record(path)
		return override.Clone()
	}
}

// mergeMapping applies rule 1: base keys keep their order and are merged
// per-key; keys new in the override are appended in override order. Null
// overrides delete keys only on removable paths.
func (e *Engine) mergeMapping(base, override *node.Node, path node.Path) *node.Node {
	out := node.Mapping()

	for _, entry := range base.Entries() {
		childPath := path.Child(entry.Key)
		ov, ok := override.Get(entry.Key)
		if !ok {
			out.Set(entry.Key, entry.Value.Clone())
			continue
		}
		if ov.IsNull() && e.policy.Removable[childPath.String()] {
			continue
		}
		out.Set(entry.Key, e.merge(entry.Value, ov, childPath))
	}

	for _, entry := range override.Entries() {
		if base.Has(entry.Key) {
			continue
		}
		childPath := path.Child(entry.Key)
		if entry.Value.IsNull() && e.policy.Removable[childPath.String()] {
			continue
		}
		out.Set(entry.Key, entry.Value.Clone())
		e.recordTree(entry.Value, childPath)
	}

	return out
}

// mergeKeyed applies rule 3: elements are matched by the identifying
// field. Matched elements merge in place, unmatched override elements
// append, and base-only elements are retained unchanged. When the base
// repeats an identifier, only the last occurrence survives.
func (e *Engine) mergeKeyed(base, override *node.Node, field string, path node.Path) *node.Node {
	items := make([]*node.Node, 0, base.Len()+override.Len())
	index := make(map[string]int, base.Len())

	// Duplicate identifiers in the base keep the last occurrence only.
	last := make(map[string]int, base.Len())
	for i, item := range base.Items() {
		id, ok := elementID(item, field)
		if !ok {
			continue
		}
		if prev, dup := last[id]; dup {
			e.logger.Warn("duplicate keyed-list identifier in base",
				"path", path.String(), "field", field, "id", id, "dropped", prev)
		}
		last[id] = i
	}
	for i, item := range base.Items() {
		id, ok := elementID(item, field)
		if ok && last[id] != i {
			continue
		}
		items = append(items, item.Clone())
		if ok {
			index[id] = len(items) - 1
		}
	}

	for _, item := range override.Items() {
		id, ok := elementID(item, field)
		if ok {
			if pos, matched := index[id]; matched {
				// Element payloads merge under the sequence's structural
				// path, so nested sequences keep matching the policy table.
				items[pos] = e.merge(items[pos], item, path)
				continue
			}
		}
		items = append(items, item.Clone())
		e.recordTree(item, path)
	}

	return node.Sequence(items...)
}

// elementID extracts the identifying field's scalar value from a
// keyed-list element. Elements without one are treated as unmatched.
func elementID(elem *node.Node, field string) (string, bool) {
	if elem.Kind() != node.KindMapping {
		return "", false
	}
	v, ok := elem.Get(field)
	if !ok || v.Kind() != node.KindScalar || v.IsNull() {
		return "", false
	}
	return fmt.Sprintf("%v", v.Value()), true
}

func (e *Engine) record(path node.Path) {
	if e.tracker != nil {
		e.tracker.record(path.String())
	}
}

// recordTree records provenance for every leaf under a subtree that was
// copied from the override wholesale.
func (e *Engine) recordTree(n *node.Node, path node.Path) {
	if e.tracker == nil {
		return
	}
	e.tracker.recordTree(n, path)
}
