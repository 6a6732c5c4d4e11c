package validate

import (
	"fmt"
	"strings"

	"pipeconf"
	"pipeconf/node"
)

// Check constrains the shape of a value.
type Check int

// Value checks.
const (
	// CheckAny accepts every kind.
	CheckAny Check = iota

	// CheckString requires a string scalar.
	CheckString

	// CheckNumber requires an integer or float scalar.
	CheckNumber

	// CheckBool requires a boolean scalar.
	CheckBool

	// CheckMapping requires a mapping.
	CheckMapping

	// CheckSequence requires a sequence.
	CheckSequence

	// CheckRunSwitch requires a sequence of On/Off markers, the forked-run
	// convention used by pipeline sections ([On], [Off], or [On, Off]).
	CheckRunSwitch
)

// KeyRule constrains one key of a section.
type KeyRule struct {
	Name     string
	Required bool
	Check    Check
}

// Section constrains one mapping in the tree, addressed by its dot path.
type Section struct {
	// Path locates the mapping, e.g. "pipeline_setup.output_directory".
	Path string

	// Required makes the section's absence a violation.
	Required bool

	// Closed makes keys outside Keys a violation.
	Closed bool

	// Keys are the per-key constraints.
	Keys []KeyRule

	// Exclusive lists pairs of keys that must not both be set.
	Exclusive [][2]string
}

// Schema is the full set of constraints applied to a resolved tree.
// It is explicit data, so presets and tests can carry their own schemas.
type Schema struct {
	Sections []Section

	// KeyedLists mirrors the merge policy: sequence path -> identifying
	// field. The validator enforces the uniqueness invariant the merge
	// engine relies on, and that every element carries the field.
	KeyedLists map[string]string
}

// Validator checks a fully resolved tree against a schema, accumulating
// every violation rather than stopping at the first, so one run surfaces
// the complete list for the operator.
type Validator struct {
	schema Schema
}

// New creates a validator for the given schema.
func New(schema Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate returns nil when the tree satisfies the schema, or a
// *pipeconf.ValidationError carrying every violation found.
func (v *Validator) Validate(tree *node.Node) error {
	var violations []pipeconf.Violation

	for _, section := range v.schema.Sections {
		violations = append(violations, checkSection(tree, section)...)
	}
	for path, field := range v.schema.KeyedLists {
		violations = append(violations, checkKeyedList(tree, path, field)...)
	}

	if len(violations) == 0 {
		return nil
	}
	return &pipeconf.ValidationError{Violations: violations}
}

func checkSection(tree *node.Node, section Section) []pipeconf.Violation {
	target, ok := node.Descend(tree, strings.Split(section.Path, ".")...)
	if !ok {
		if section.Required {
			return []pipeconf.Violation{{Path: section.Path, Reason: "required section is missing"}}
		}
		return nil
	}
	if target.Kind() != node.KindMapping {
		return []pipeconf.Violation{{
			Path:   section.Path,
			Reason: fmt.Sprintf("expected a mapping, got %s", target.Kind()),
		}}
	}

	var violations []pipeconf.Violation

	known := make(map[string]KeyRule, len(section.Keys))
	for _, rule := range section.Keys {
		known[rule.Name] = rule
		value, present := target.Get(rule.Name)
		keyPath := section.Path + "." + rule.Name
		if !present {
			if rule.Required {
				violations = append(violations, pipeconf.Violation{
					Path: keyPath, Reason: "required key is missing",
				})
			}
			continue
		}
		if reason, ok := checkValue(value, rule.Check); !ok {
			violations = append(violations, pipeconf.Violation{Path: keyPath, Reason: reason})
		}
	}

	if section.Closed {
		for _, key := range target.Keys() {
			if _, ok := known[key]; !ok {
				violations = append(violations, pipeconf.Violation{
					Path: section.Path + "." + key, Reason: "unknown key",
				})
			}
		}
	}

	for _, pair := range section.Exclusive {
		if target.Has(pair[0]) && target.Has(pair[1]) {
			violations = append(violations, pipeconf.Violation{
				Path:   section.Path,
				Reason: fmt.Sprintf("%s and %s are mutually exclusive", pair[0], pair[1]),
			})
		}
	}

	return violations
}

func checkValue(value *node.Node, check Check) (string, bool) {
	switch check {
	case CheckAny:
		return "", true
	case CheckString:
		if _, ok := value.StringValue(); !ok {
			return fmt.Sprintf("expected a string, got %s", describe(value)), false
		}
	case CheckNumber:
		if value.Kind() != node.KindScalar {
			return fmt.Sprintf("expected a number, got %s", describe(value)), false
		}
		switch value.Value().(type) {
		case int64, float64:
		default:
			return fmt.Sprintf("expected a number, got %s", describe(value)), false
		}
	case CheckBool:
		if value.Kind() != node.KindScalar {
			return fmt.Sprintf("expected a boolean, got %s", describe(value)), false
		}
		if _, ok := value.Value().(bool); !ok {
			return fmt.Sprintf("expected a boolean, got %s", describe(value)), false
		}
	case CheckMapping:
		if value.Kind() != node.KindMapping {
			return fmt.Sprintf("expected a mapping, got %s", describe(value)), false
		}
	case CheckSequence:
		if value.Kind() != node.KindSequence {
			return fmt.Sprintf("expected a sequence, got %s", describe(value)), false
		}
	case CheckRunSwitch:
		if value.Kind() != node.KindSequence {
			return fmt.Sprintf("expected a run switch like [On] or [Off], got %s", describe(value)), false
		}
		for _, item := range value.Items() {
			if !isRunMarker(item) {
				return fmt.Sprintf("run switch entries must be On or Off, got %s", describe(item)), false
			}
		}
	}
	return "", true
}

// isRunMarker accepts the On/Off spellings: strings as the presets write
// them, and booleans for documents whose parser resolved them eagerly.
func isRunMarker(n *node.Node) bool {
	if n.Kind() != node.KindScalar {
		return false
	}
	switch v := n.Value().(type) {
	case bool:
		return true
	case string:
		return v == "On" || v == "Off" || v == "on" || v == "off"
	}
	return false
}

func checkKeyedList(tree *node.Node, path, field string) []pipeconf.Violation {
	seq, ok := node.Descend(tree, strings.Split(path, ".")...)
	if !ok {
		return nil
	}
	if seq.Kind() != node.KindSequence {
		return []pipeconf.Violation{{
			Path:   path,
			Reason: fmt.Sprintf("expected a sequence, got %s", seq.Kind()),
		}}
	}

	var violations []pipeconf.Violation
	seen := make(map[string]bool, seq.Len())
	for i, item := range seq.Items() {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if item.Kind() != node.KindMapping {
			violations = append(violations, pipeconf.Violation{
				Path:   itemPath,
				Reason: fmt.Sprintf("keyed-list element must be a mapping, got %s", item.Kind()),
			})
			continue
		}
		idNode, present := item.Get(field)
		if !present {
			violations = append(violations, pipeconf.Violation{
				Path:   itemPath,
				Reason: fmt.Sprintf("keyed-list element must carry a non-empty %s", field),
			})
			continue
		}
		id, isString := idNode.StringValue()
		if !isString || id == "" {
			violations = append(violations, pipeconf.Violation{
				Path:   itemPath,
				Reason: fmt.Sprintf("keyed-list element must carry a non-empty %s", field),
			})
			continue
		}
		if seen[id] {
			violations = append(violations, pipeconf.Violation{
				Path:   fmt.Sprintf("%s[%s]", path, id),
				Reason: fmt.Sprintf("duplicate %s", field),
			})
		}
		seen[id] = true
	}
	return violations
}

func describe(n *node.Node) string {
	if n.Kind() != node.KindScalar {
		return "a " + n.Kind().String()
	}
	if n.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%v (%T)", n.Value(), n.Value())
}
