package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// KnownConditions is the fixed visibility-condition vocabulary. The schema
// package owns the names so document validation can flag typos; the
// visibility package owns their evaluation semantics.
var KnownConditions = []string{
	"rent_deposit",
	"housing_owned",
	"deposit_over",
	"insurance_savings",
	"securities",
	"crypto",
	"vehicle",
	"retirement_fund",
}

// KnownCondition reports whether tag is part of the fixed vocabulary.
func KnownCondition(tag string) bool {
	for _, t := range KnownConditions {
		if t == tag {
			return true
		}
	}
	return false
}

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "steps[3].options")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a survey file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Survey, []*ValidationError) {
	var allErrors []*ValidationError

	sv, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	allErrors = append(allErrors, validateSemantic(sv)...)
	allErrors = append(allErrors, ValidateDomain(sv)...)

	if len(allErrors) > 0 {
		return sv, allErrors
	}
	return sv, nil
}

// validateSemantic validates the survey against the generated JSON Schema.
func validateSemantic(sv *Survey) []*ValidationError {
	semanticErr := func(msg string) []*ValidationError {
		return []*ValidationError{{Phase: "semantic", Message: msg, Severity: "error"}}
	}

	data, err := json.Marshal(sv)
	if err != nil {
		return semanticErr(fmt.Sprintf("marshal for schema validation: %v", err))
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticErr(fmt.Sprintf("generate schema: %v", err))
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semanticErr(fmt.Sprintf("unmarshal schema: %v", err))
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("survey-v1.json", schemaDoc); err != nil {
		return semanticErr(fmt.Sprintf("add schema resource: %v", err))
	}
	sch, err := c.Compile("survey-v1.json")
	if err != nil {
		return semanticErr(fmt.Sprintf("compile schema: %v", err))
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semanticErr(fmt.Sprintf("unmarshal document: %v", err))
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of errors and warnings; empty means valid.
func ValidateDomain(sv *Survey) []*ValidationError {
	var errs []*ValidationError

	fail := func(path, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: path, Message: msg, Severity: "error"})
	}
	warn := func(path, msg string) {
		errs = append(errs, &ValidationError{Phase: "domain", Path: path, Message: msg, Severity: "warning"})
	}

	if sv.APIVersion != "survey/v1" {
		fail("apiVersion", fmt.Sprintf("unrecognized apiVersion %q, expected %q", sv.APIVersion, "survey/v1"))
	}

	if len(sv.Steps) == 0 {
		fail("steps", "survey must contain at least one step")
	}

	seen := make(map[string]int)
	for i, step := range sv.Steps {
		path := fmt.Sprintf("steps[%d]", i)

		if step.ID == "" {
			fail(path+".id", "step requires an id")
		} else if prev, dup := seen[step.ID]; dup {
			fail(path+".id", fmt.Sprintf("duplicate step id %q (first declared at steps[%d])", step.ID, prev))
		} else {
			seen[step.ID] = i
		}

		if !step.Kind.Valid() {
			fail(path+".kind", fmt.Sprintf("unknown step kind %q", step.Kind))
			continue
		}

		switch {
		case step.Kind.Choice():
			if len(step.Options) == 0 {
				fail(path+".options", fmt.Sprintf("%s step %q requires options", step.Kind, step.ID))
			}
			if step.Kind == KindBoolean && len(step.Options) != 2 {
				fail(path+".options", fmt.Sprintf("boolean step %q requires exactly 2 options, has %d", step.ID, len(step.Options)))
			}
			optSeen := make(map[string]bool)
			for j, opt := range step.Options {
				if opt.Value == "" {
					fail(fmt.Sprintf("%s.options[%d].value", path, j), "option requires a value")
				}
				if optSeen[opt.Value] {
					fail(fmt.Sprintf("%s.options[%d].value", path, j), fmt.Sprintf("duplicate option value %q in step %q", opt.Value, step.ID))
				}
				optSeen[opt.Value] = true
			}
			if len(step.Fields) > 0 {
				fail(path+".fields", fmt.Sprintf("%s step %q must not declare fields", step.Kind, step.ID))
			}

		case step.Kind == KindCompositeForm:
			if len(step.Fields) == 0 {
				fail(path+".fields", fmt.Sprintf("composite_form step %q requires fields", step.ID))
			}
			fieldSeen := make(map[string]bool)
			for j, f := range step.Fields {
				fpath := fmt.Sprintf("%s.fields[%d]", path, j)
				if f.ID == "" {
					fail(fpath+".id", "field requires an id")
				}
				if fieldSeen[f.ID] {
					fail(fpath+".id", fmt.Sprintf("duplicate field id %q in step %q", f.ID, step.ID))
				}
				fieldSeen[f.ID] = true
				// Unknown tags are a warning, not an error: the evaluator
				// fails closed, so the field would simply never show.
				if f.Condition != "" && !KnownCondition(f.Condition) {
					warn(fpath+".condition", fmt.Sprintf("condition %q is not in the visibility vocabulary; field will never be shown", f.Condition))
				}
			}
			if len(step.Options) > 0 {
				fail(path+".options", fmt.Sprintf("composite_form step %q must not declare options", step.ID))
			}

		default: // numeric, terminal
			if len(step.Options) > 0 {
				fail(path+".options", fmt.Sprintf("%s step %q must not declare options", step.Kind, step.ID))
			}
			if len(step.Fields) > 0 {
				fail(path+".fields", fmt.Sprintf("%s step %q must not declare fields", step.Kind, step.ID))
			}
		}

		if step.Kind == KindTerminal && i != len(sv.Steps)-1 {
			fail(path, fmt.Sprintf("terminal step %q must be the last step", step.ID))
		}
	}

	if n := len(sv.Steps); n > 0 && sv.Steps[n-1].Kind != KindTerminal {
		warn(fmt.Sprintf("steps[%d]", n-1), "last step is not terminal; completion relies on the submit response alone")
	}

	return errs
}
