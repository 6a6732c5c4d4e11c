package migrate

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"pipeconf"
	"pipeconf/node"
)

// CurrentVersion is the schema version the rest of the system understands.
// Documents declaring an older version are rewritten by the step chain
// before merging; documents declaring a newer one are rejected.
const CurrentVersion = "v1.8"

// Step rewrites a tree from one schema version to the next. Apply must be
// pure (never mutate its input) and idempotent when handed an
// already-migrated tree, since a base and an override are migrated
// independently before they meet in the merge engine.
type Step struct {
	From  string
	To    string
	Apply func(tree *node.Node) *node.Node
}

// Migrator applies an ordered chain of migration steps. The chain is
// explicit data so that adding a schema version means registering one more
// step, not threading a new conditional through the code.
type Migrator struct {
	steps []Step
}

// New creates a migrator with the given steps, kept ordered by version.
func New(steps ...Step) *Migrator {
	m := &Migrator{}
	for _, s := range steps {
		m.Register(s)
	}
	return m
}

// Default returns a migrator carrying the built-in schema history.
func Default() *Migrator {
	return New(
		Step{From: "v1.6", To: "v1.7", Apply: renameFunctionalSections},
		Step{From: "v1.7", To: "v1.8", Apply: structureRegressors},
	)
}

// Register adds a step, keeping the chain sorted by its From version.
func (m *Migrator) Register(s Step) {
	m.steps = append(m.steps, s)
	sort.Slice(m.steps, func(i, j int) bool {
		return semver.Compare(m.steps[i].From, m.steps[j].From) < 0
	})
}

// Migrate rewrites tree from the declared version up to CurrentVersion.
// An empty version means the tree is already current. The walk fails with
// *pipeconf.NoMigrationPathError when no step covers a required jump or
// the declared version is newer than current. name is used only for error
// reporting and may be empty.
func (m *Migrator) Migrate(name string, tree *node.Node, fromVersion string) (*node.Node, error) {
	if fromVersion == "" {
		return tree, nil
	}
	cur := canonical(fromVersion)
	if !semver.IsValid(cur) {
		return nil, &pipeconf.NoMigrationPathError{Name: name, From: fromVersion, Current: CurrentVersion}
	}
	if semver.Compare(cur, CurrentVersion) > 0 {
		return nil, &pipeconf.NoMigrationPathError{Name: name, From: fromVersion, Current: CurrentVersion}
	}

	out := tree
	for semver.Compare(cur, CurrentVersion) < 0 {
		step, ok := m.stepFrom(cur)
		if !ok {
			return nil, &pipeconf.NoMigrationPathError{Name: name, From: fromVersion, Current: CurrentVersion}
		}
		out = step.Apply(out)
		cur = step.To
	}
	return out, nil
}

func (m *Migrator) stepFrom(version string) (Step, bool) {
	for _, s := range m.steps {
		if semver.Compare(s.From, version) == 0 {
			return s, true
		}
	}
	return Step{}, false
}

// canonical normalizes a declared version ("1.7", "v1.7.0") to the
// comparable semver form. Patch components are dropped: schema versions
// move in minor increments.
func canonical(version string) string {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return v
	}
	return semver.MajorMinor(v)
}

// renameFunctionalSections is the v1.6 -> v1.7 step: the
// functional_preprocessing section became functional_preproc, and the
// schema version moved out of pipeline_setup into the document-level
// schema_version field.
func renameFunctionalSections(tree *node.Node) *node.Node {
	out := tree.Clone()
	if out.Has("functional_preprocessing") && !out.Has("functional_preproc") {
		out.Rename("functional_preprocessing", "functional_preproc")
	}
	if setup, ok := out.Get("pipeline_setup"); ok && setup.Kind() == node.KindMapping {
		setup.Delete("pipeline_version")
	}
	return out
}

// structureRegressors is the v1.7 -> v1.8 step: regressor entries changed
// from bare method names to mappings keyed by Name, and the output
// directory grew a quality_control section with a computed default.
func structureRegressors(tree *node.Node) *node.Node {
	out := tree.Clone()

	if regs, ok := node.Descend(out, "nuisance_corrections", "2-nuisance_regression", "Regressors"); ok {
		if regs.Kind() == node.KindSequence {
			for i, item := range regs.Items() {
				if item.Kind() != node.KindScalar || item.IsNull() {
					continue
				}
				entry := node.Mapping()
				entry.Set("Name", node.Scalar(fmt.Sprintf("%v", item.Value())))
				regs.Items()[i] = entry
			}
		}
	}

	if outDir, ok := node.Descend(out, "pipeline_setup", "output_directory"); ok {
		if outDir.Kind() == node.KindMapping && !outDir.Has("quality_control") {
			qc := node.Mapping()
			qc.Set("generate_quality_control_images", node.Bool(true))
			outDir.Set("quality_control", qc)
		}
	}
	return out
}
