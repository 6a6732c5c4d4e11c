package validate

import (
	"errors"
	"strings"
	"testing"

	"pipeconf"
	"pipeconf/testutil"
)

func violations(t *testing.T, err error) []pipeconf.Violation {
	t.Helper()
	var verr *pipeconf.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	return verr.Violations
}

func TestValidate_OK(t *testing.T) {
	v := New(Schema{
		Sections: []Section{{
			Path:     "setup",
			Required: true,
			Keys:     []KeyRule{{Name: "name", Required: true, Check: CheckString}},
		}},
	})
	tree := testutil.MustParseYAML(t, "setup:\n  name: ok\n")

	if err := v.Validate(tree); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	v := New(Schema{
		Sections: []Section{{
			Path:   "setup",
			Closed: true,
			Keys: []KeyRule{
				{Name: "bar", Check: CheckString},
			},
		}},
	})
	// Two independent problems: unknown key foo, wrong kind at bar.
	tree := testutil.MustParseYAML(t, "setup:\n  bar: [not, a, string]\n  foo: 1\n")

	got := violations(t, v.Validate(tree))
	if len(got) != 2 {
		t.Fatalf("got %d violations, want exactly 2: %v", len(got), got)
	}
}

func TestValidate_RequiredSectionMissing(t *testing.T) {
	v := New(Schema{Sections: []Section{{Path: "pipeline_setup", Required: true}}})

	got := violations(t, v.Validate(testutil.MustParseYAML(t, "other: 1\n")))
	if len(got) != 1 || got[0].Path != "pipeline_setup" {
		t.Errorf("violations = %v, want one at pipeline_setup", got)
	}
}

func TestValidate_RequiredKeyMissing(t *testing.T) {
	v := New(Schema{
		Sections: []Section{{
			Path: "setup",
			Keys: []KeyRule{{Name: "path", Required: true, Check: CheckString}},
		}},
	})

	got := violations(t, v.Validate(testutil.MustParseYAML(t, "setup: {}\n")))
	if len(got) != 1 || got[0].Path != "setup.path" {
		t.Errorf("violations = %v, want one at setup.path", got)
	}
}

func TestValidate_MutuallyExclusive(t *testing.T) {
	v := New(Schema{
		Sections: []Section{{
			Path:      "smoothing",
			Exclusive: [][2]string{{"fwhm", "fwhm_by_resolution"}},
		}},
	})
	tree := testutil.MustParseYAML(t, "smoothing:\n  fwhm: [4]\n  fwhm_by_resolution: {}\n")

	got := violations(t, v.Validate(tree))
	if len(got) != 1 {
		t.Fatalf("got %d violations, want 1: %v", len(got), got)
	}
	if !strings.Contains(got[0].Reason, "mutually exclusive") {
		t.Errorf("reason = %q, want mutually exclusive", got[0].Reason)
	}
}

func TestValidate_RunSwitch(t *testing.T) {
	v := New(Schema{
		Sections: []Section{{
			Path: "despiking",
			Keys: []KeyRule{{Name: "run", Check: CheckRunSwitch}},
		}},
	})

	if err := v.Validate(testutil.MustParseYAML(t, "despiking:\n  run: [\"On\", \"Off\"]\n")); err != nil {
		t.Errorf("valid run switch rejected: %v", err)
	}
	if err := v.Validate(testutil.MustParseYAML(t, "despiking:\n  run: yes\n")); err == nil {
		t.Error("scalar run switch accepted, want violation")
	}
	if err := v.Validate(testutil.MustParseYAML(t, "despiking:\n  run: [sometimes]\n")); err == nil {
		t.Error("bad run marker accepted, want violation")
	}
}

func TestValidate_KeyedListUniqueness(t *testing.T) {
	v := New(Schema{
		KeyedLists: map[string]string{"regressors": "Name"},
	})
	tree := testutil.MustParseYAML(t, `
regressors:
  - Name: A
  - Name: A
  - x: 1
`)

	got := violations(t, v.Validate(tree))
	if len(got) != 2 {
		t.Fatalf("got %d violations, want 2 (duplicate Name, missing Name): %v", len(got), got)
	}
}

func TestDefaultSchema_AcceptsPresetShape(t *testing.T) {
	tree := testutil.MustParseYAML(t, string(testutil.LoadFixture(t, "resolved.yaml")))
	if err := Default().Validate(tree); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestDefaultSchema_RejectsUnknownSetupKey(t *testing.T) {
	tree := testutil.MustParseYAML(t, `
pipeline_setup:
  pipeline_name: x
  output_directory:
    path: /outputs
  surprise: true
`)
	got := violations(t, Default().Validate(tree))
	found := false
	for _, v := range got {
		if v.Path == "pipeline_setup.surprise" {
			found = true
		}
	}
	if !found {
		t.Errorf("no violation at pipeline_setup.surprise: %v", got)
	}
}
