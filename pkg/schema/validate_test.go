package schema

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

func filterErrors(errs []*ValidationError) []*ValidationError {
	var out []*ValidationError
	for _, e := range errs {
		if e.Severity == "error" {
			out = append(out, e)
		}
	}
	return out
}

func containsMessage(errs []*ValidationError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateFile_Valid(t *testing.T) {
	sv, errs := ValidateFile(testdataPath("valid.yaml"))
	errors := filterErrors(errs)
	if len(errors) > 0 {
		for _, e := range errors {
			t.Errorf("unexpected error: %s", e)
		}
	}
	if sv == nil {
		t.Fatal("expected survey, got nil")
	}
	if sv.Meta.Name != "test-survey" {
		t.Errorf("expected name 'test-survey', got %q", sv.Meta.Name)
	}
	if len(sv.Steps) != 3 {
		t.Errorf("expected 3 steps, got %d", len(sv.Steps))
	}
}

func TestValidateFile_DuplicateIDs(t *testing.T) {
	_, errs := ValidateFile(testdataPath("duplicate_ids.yaml"))
	if !containsMessage(filterErrors(errs), "duplicate step id") {
		t.Error("expected duplicate step id error")
	}
}

func TestValidateFile_BooleanOptionCount(t *testing.T) {
	_, errs := ValidateFile(testdataPath("boolean_three.yaml"))
	if !containsMessage(filterErrors(errs), "exactly 2 options") {
		t.Error("expected boolean option count error")
	}
}

func TestValidateFile_TerminalNotLast(t *testing.T) {
	_, errs := ValidateFile(testdataPath("terminal_middle.yaml"))
	if !containsMessage(filterErrors(errs), "must be the last step") {
		t.Error("expected terminal placement error")
	}
}

// An unknown condition tag degrades to a warning: the field fails closed at
// runtime, so the document is still usable.
func TestValidateFile_UnknownConditionIsWarning(t *testing.T) {
	_, errs := ValidateFile(testdataPath("unknown_condition.yaml"))
	if len(filterErrors(errs)) > 0 {
		t.Errorf("expected no errors, got %v", filterErrors(errs))
	}
	var warned bool
	for _, e := range errs {
		if e.Severity == "warning" && strings.Contains(e.Message, "owns_yacht") {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning naming the unknown condition tag")
	}
}

// Strict decoding: unknown document fields are structural errors, not
// silently dropped.
func TestValidateFile_UnknownFieldStructural(t *testing.T) {
	_, errs := ValidateFile(testdataPath("unknown_field.yaml"))
	errors := filterErrors(errs)
	if len(errors) == 0 {
		t.Fatal("expected structural error for unknown field")
	}
	if errors[0].Phase != "structural" {
		t.Errorf("expected structural phase, got %q", errors[0].Phase)
	}
}

func TestValidateDomain_EmptySteps(t *testing.T) {
	sv := &Survey{APIVersion: "survey/v1", Meta: Meta{Name: "empty"}}
	errs := ValidateDomain(sv)
	if !containsMessage(errs, "at least one step") {
		t.Error("expected empty steps error")
	}
}

func TestValidateDomain_BadAPIVersion(t *testing.T) {
	sv := &Survey{
		APIVersion: "survey/v2",
		Meta:       Meta{Name: "v2"},
		Steps:      []StepDescriptor{{ID: "s", Title: "t", Kind: KindTerminal}},
	}
	if !containsMessage(ValidateDomain(sv), "unrecognized apiVersion") {
		t.Error("expected apiVersion error")
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "survey-v1.json") {
		t.Error("expected schema id in output")
	}
	if !strings.Contains(string(data), "composite_form") {
		t.Error("expected step kind enum in output")
	}
}
