// Package visibility decides which fields of a composite form step are
// relevant given the answers collected so far. Condition tags come from a
// fixed vocabulary; each tag maps to an expr-lang program evaluated against
// prior answers only — never against the form's own in-progress values.
//
// The evaluator fails closed: an unrecognized tag, an unanswered referenced
// step, or an evaluation error hides the field rather than surfacing an
// unvalidated one.
package visibility

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/acrolabs/counsel/pkg/schema"
)

// Step identifiers referenced by the condition vocabulary.
const (
	StepHousing    = "step_03_housing"
	StepAssets     = "step_07_assets"
	StepRetirement = "step_08_retirement"
)

// conditionSources maps each vocabulary tag to its expr-lang condition.
// The environment carries "answers" (step id → selected value for
// single-choice and boolean steps) and "assets" (the recorded asset-category
// selection, empty when unanswered or not a selection set).
var conditionSources = map[string]string{
	"rent_deposit":      `answers[` + quoted(StepHousing) + `] == "rent_deposit"`,
	"housing_owned":     `answers[` + quoted(StepHousing) + `] == "owned"`,
	"deposit_over":      `"deposit_over" in assets`,
	"insurance_savings": `"insurance_savings" in assets`,
	"securities":        `"securities" in assets`,
	"crypto":            `"crypto" in assets`,
	"vehicle":           `"vehicle" in assets`,
	"retirement_fund":   `answers[` + quoted(StepRetirement) + `] == "retirement_fund"`,
}

func quoted(s string) string { return `"` + s + `"` }

// programs holds the compiled condition programs, built once at package init.
var programs = map[string]*vm.Program{}

func init() {
	for tag, src := range conditionSources {
		p, err := expr.Compile(src, expr.AsBool())
		if err != nil {
			// A vocabulary entry that fails to compile is a programming
			// error; leaving it out of the table makes the tag fail closed.
			fmt.Fprintf(os.Stderr, "visibility: compile condition %q: %v\n", tag, err)
			continue
		}
		programs[tag] = p
	}
}

// buildEnv projects recorded answers into the expr environment.
func buildEnv(answers map[string]schema.Answer) map[string]interface{} {
	single := make(map[string]string)
	assets := []string{}
	for id, a := range answers {
		switch a.Kind {
		case schema.KindSingleChoice, schema.KindBoolean:
			single[id] = a.Value
		case schema.KindMultiChoice:
			if id == StepAssets {
				assets = append(assets, a.Values...)
			}
		}
	}
	return map[string]interface{}{
		"answers": single,
		"assets":  assets,
	}
}

// Visible reports whether the field is currently relevant. Fields without a
// condition tag are always visible.
func Visible(field schema.FieldDescriptor, answers map[string]schema.Answer) bool {
	if field.Condition == "" {
		return true
	}
	program, ok := programs[field.Condition]
	if !ok {
		return false
	}
	out, err := expr.Run(program, buildEnv(answers))
	if err != nil {
		return false
	}
	visible, ok := out.(bool)
	return ok && visible
}

// VisibleFields filters fields down to the currently relevant ones,
// preserving declaration order.
func VisibleFields(fields []schema.FieldDescriptor, answers map[string]schema.Answer) []schema.FieldDescriptor {
	out := make([]schema.FieldDescriptor, 0, len(fields))
	env := buildEnv(answers)
	for _, f := range fields {
		if f.Condition == "" {
			out = append(out, f)
			continue
		}
		program, ok := programs[f.Condition]
		if !ok {
			continue
		}
		res, err := expr.Run(program, env)
		if err != nil {
			continue
		}
		if visible, ok := res.(bool); ok && visible {
			out = append(out, f)
		}
	}
	return out
}

// GroupStarts marks, for each field, whether it opens a new display group:
// a forward scan comparing each field's group to the previous field's group.
// Ungrouped fields never open a group header.
func GroupStarts(fields []schema.FieldDescriptor) []bool {
	starts := make([]bool, len(fields))
	prev := ""
	for i, f := range fields {
		if f.Group != "" && f.Group != prev {
			starts[i] = true
		}
		if f.Group != "" {
			prev = f.Group
		}
	}
	return starts
}
