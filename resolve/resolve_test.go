package resolve

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pipeconf"
	"pipeconf/loader"
	"pipeconf/merge"
	"pipeconf/node"
	"pipeconf/registry"
	"pipeconf/testutil"
	"pipeconf/validate"
)

// openSchema accepts everything; most tests here exercise chain folding,
// not validation.
func openSchema() *validate.Validator {
	return validate.New(validate.Schema{})
}

func newResolver(docs map[string]string, opts Options) *Resolver {
	opts.Loader = loader.New(testutil.BuildRegistry(docs))
	if opts.Validator == nil {
		opts.Validator = openSchema()
	}
	return New(opts)
}

func TestResolve_SingleDocument(t *testing.T) {
	r := newResolver(map[string]string{
		"base": "a: 1\nb:\n  c: 2\n",
	}, Options{})

	resolved, err := r.Resolve("base")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, _ := node.Descend(resolved.Tree, "b", "c"); got.Value() != int64(2) {
		t.Errorf("b.c = %v, want 2", got.Value())
	}
	if len(resolved.Chain) != 1 || resolved.Chain[0] != "base" {
		t.Errorf("Chain = %v, want [base]", resolved.Chain)
	}
}

func TestResolve_DespikingEndToEnd(t *testing.T) {
	r := newResolver(map[string]string{
		"base": `
functional_preproc:
  despiking:
    run: ["Off"]
  slice_timing_correction:
    run: ["On"]
`,
		"derived": `
FROM: base
functional_preproc:
  despiking:
    run: ["On"]
`,
	}, Options{})

	resolved, err := r.Resolve("derived")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	run, ok := node.Descend(resolved.Tree, "functional_preproc", "despiking", "run")
	if !ok {
		t.Fatal("despiking.run missing")
	}
	if run.Len() != 1 {
		t.Fatalf("run = %d items, want 1 (replaced, not appended)", run.Len())
	}
	if v, _ := run.Items()[0].StringValue(); v != "On" {
		t.Errorf("run[0] = %q, want On", v)
	}

	// Untouched base sections survive the fold.
	if _, ok := node.Descend(resolved.Tree, "functional_preproc", "slice_timing_correction"); !ok {
		t.Error("slice_timing_correction lost during merge")
	}

	wantChain := []string{"base", "derived"}
	for i, name := range wantChain {
		if resolved.Chain[i] != name {
			t.Errorf("Chain[%d] = %q, want %q", i, resolved.Chain[i], name)
		}
	}
}

func TestResolve_MultiLevelChain(t *testing.T) {
	r := newResolver(map[string]string{
		"root":   "a: 1\nb: 1\nc: 1\n",
		"middle": "FROM: root\nb: 2\n",
		"leaf":   "FROM: middle\nc: 3\n",
	}, Options{})

	resolved, err := r.Resolve("leaf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	for key, want := range map[string]int64{"a": 1, "b": 2, "c": 3} {
		got, _ := resolved.Tree.Get(key)
		if got.Value() != want {
			t.Errorf("%s = %v, want %d", key, got.Value(), want)
		}
	}
	if got := strings.Join(resolved.Chain, ","); got != "root,middle,leaf" {
		t.Errorf("Chain = %s, want root,middle,leaf", got)
	}
}

func TestResolve_CycleDetected(t *testing.T) {
	r := newResolver(map[string]string{
		"X": "FROM: Y\na: 1\n",
		"Y": "FROM: X\nb: 2\n",
	}, Options{})

	_, err := r.Resolve("X")
	var cycleErr *pipeconf.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
	if got := strings.Join(cycleErr.Chain, ","); got != "X,Y" {
		t.Errorf("Chain = %s, want X,Y", got)
	}
}

func TestResolve_SelfCycle(t *testing.T) {
	r := newResolver(map[string]string{
		"X": "FROM: X\na: 1\n",
	}, Options{})

	_, err := r.Resolve("X")
	var cycleErr *pipeconf.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
	if len(cycleErr.Chain) != 1 || cycleErr.Chain[0] != "X" {
		t.Errorf("Chain = %v, want [X]", cycleErr.Chain)
	}
}

func TestResolve_ChainTooDeep(t *testing.T) {
	docs := map[string]string{"doc0": "a: 0\n"}
	for i := 1; i <= 10; i++ {
		docs[fmt.Sprintf("doc%d", i)] = fmt.Sprintf("FROM: doc%d\na: %d\n", i-1, i)
	}
	r := newResolver(docs, Options{MaxDepth: 5})

	if _, err := r.Resolve("doc10"); !errors.Is(err, pipeconf.ErrChainTooDeep) {
		t.Errorf("err = %v, want ErrChainTooDeep", err)
	}

	// A chain within the bound still resolves.
	r = newResolver(docs, Options{MaxDepth: 20})
	if _, err := r.Resolve("doc10"); err != nil {
		t.Errorf("Resolve within bound: %v", err)
	}
}

func TestResolve_UnknownBase(t *testing.T) {
	r := newResolver(map[string]string{
		"derived": "FROM: missing\na: 1\n",
	}, Options{})

	_, err := r.Resolve("derived")
	if !errors.Is(err, pipeconf.ErrUnknownBase) {
		t.Errorf("err = %v, want ErrUnknownBase", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("err %q does not name the missing base", err)
	}
}

func TestResolve_TopLevelNotFound(t *testing.T) {
	r := newResolver(nil, Options{})

	_, err := r.Resolve("absent")
	if !errors.Is(err, pipeconf.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if errors.Is(err, pipeconf.ErrUnknownBase) {
		t.Error("top-level miss reported as unknown base")
	}
}

func TestResolve_MigratesBeforeMerging(t *testing.T) {
	// The base is written against schema v1.6; its old section name must
	// be renamed before the derived document's override lands on it.
	r := newResolver(map[string]string{
		"legacy-base": `
schema_version: v1.6
functional_preprocessing:
  despiking:
    run: ["Off"]
`,
		"derived": `
FROM: legacy-base
functional_preproc:
  despiking:
    run: ["On"]
`,
	}, Options{})

	resolved, err := r.Resolve("derived")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Tree.Has("functional_preprocessing") {
		t.Error("legacy section name survived migration")
	}
	run, ok := node.Descend(resolved.Tree, "functional_preproc", "despiking", "run")
	if !ok {
		t.Fatal("despiking.run missing")
	}
	if v, _ := run.Items()[0].StringValue(); v != "On" {
		t.Errorf("run[0] = %q, want On (override applied after migration)", v)
	}
}

func TestResolve_NoMigrationPath(t *testing.T) {
	r := newResolver(map[string]string{
		"ancient": "schema_version: v0.9\na: 1\n",
	}, Options{})

	_, err := r.Resolve("ancient")
	var noPath *pipeconf.NoMigrationPathError
	if !errors.As(err, &noPath) {
		t.Fatalf("err = %v, want *NoMigrationPathError", err)
	}
}

func TestResolve_ValidationFailurePropagates(t *testing.T) {
	r := newResolver(map[string]string{
		"doc": "a: 1\n",
	}, Options{
		Validator: validate.New(validate.Schema{
			Sections: []validate.Section{{Path: "pipeline_setup", Required: true}},
		}),
	})

	_, err := r.Resolve("doc")
	var verr *pipeconf.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestResolve_Provenance(t *testing.T) {
	tracker := merge.NewTracker()
	r := newResolver(map[string]string{
		"base":    "a: 1\nb: 2\n",
		"derived": "FROM: base\nb: 3\nc: 4\n",
	}, Options{Tracker: tracker})

	resolved, err := r.Resolve("derived")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"a", "base"},
		{"b", "base,derived"},
		{"c", "derived"},
	}
	for _, tt := range tests {
		if got := strings.Join(resolved.Provenance(tt.path), ","); got != tt.want {
			t.Errorf("Provenance(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestResolve_BuiltinPresets(t *testing.T) {
	r := New(Options{Loader: loader.New(registry.Builtin())})

	resolved, err := r.Resolve("RBC-options")
	if err != nil {
		t.Fatalf("Resolve(RBC-options): %v", err)
	}

	// Derived value replaced the base's.
	run, ok := node.Descend(resolved.Tree, "functional_preproc", "despiking", "run")
	if !ok {
		t.Fatal("despiking.run missing")
	}
	if v, _ := run.Items()[0].StringValue(); v != "On" {
		t.Errorf("despiking.run[0] = %q, want On", v)
	}

	// Keyed regressor merge: "default" merged in place, base-only
	// "defaultNoGSR" retained, "aCompCor" appended.
	regs, ok := node.Descend(resolved.Tree, "nuisance_corrections", "2-nuisance_regression", "Regressors")
	if !ok {
		t.Fatal("Regressors missing")
	}
	var names []string
	for _, item := range regs.Items() {
		n, _ := item.Get("Name")
		s, _ := n.StringValue()
		names = append(names, s)
	}
	if got := strings.Join(names, ","); got != "default,defaultNoGSR,aCompCor" {
		t.Fatalf("regressor order = %s, want default,defaultNoGSR,aCompCor", got)
	}

	// The merged "default" keeps the base's Motion block and gains the
	// override's include_delayed under GlobalSignal.
	def := regs.Items()[0]
	if _, ok := def.Get("Motion"); !ok {
		t.Error("default regressor lost base Motion block")
	}
	gs, ok := node.Descend(def, "GlobalSignal", "include_delayed")
	if !ok {
		t.Fatal("GlobalSignal.include_delayed missing")
	}
	if gs.Value() != true {
		t.Errorf("include_delayed = %v, want true", gs.Value())
	}

	// Scalar-list replacement for smoothing width.
	fwhm, _ := node.Descend(resolved.Tree, "post_processing", "spatial_smoothing", "fwhm")
	if fwhm.Len() != 1 || fwhm.Items()[0].Value() != int64(6) {
		t.Errorf("fwhm = %v, want [6]", fwhm.Interface())
	}

	// Base-only sections are inherited wholesale.
	if _, ok := node.Descend(resolved.Tree, "registration_workflows", "anatomical_registration"); !ok {
		t.Error("registration_workflows lost")
	}

	if got, _ := node.Descend(resolved.Tree, "pipeline_setup", "pipeline_name"); got != nil {
		if s, _ := got.StringValue(); s != "RBC-options" {
			t.Errorf("pipeline_name = %q, want RBC-options", s)
		}
	}
}
