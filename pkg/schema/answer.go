package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Answer is a typed value recorded for one step. Exactly one variant is
// populated, selected by Kind. Once recorded for a step identifier an answer
// is immutable; resubmission of the same step is not supported within one
// session lifecycle.
//
// On the wire an answer is the bare value the scoring service expects:
// a string for single_choice/boolean, a string array for multi_choice, a
// number for numeric, and an object of field amounts for composite_form.
type Answer struct {
	Kind   StepKind
	Value  string           // single_choice, boolean ("yes"/"no")
	Values []string         // multi_choice
	Amount int64            // numeric
	Fields map[string]int64 // composite_form; omitted fields are absent, not zero
}

// SingleAnswer builds a single_choice/boolean answer.
func SingleAnswer(kind StepKind, value string) Answer {
	return Answer{Kind: kind, Value: value}
}

// MultiAnswer builds a multi_choice answer preserving selection order.
func MultiAnswer(values []string) Answer {
	return Answer{Kind: KindMultiChoice, Values: values}
}

// NumericAnswer builds a numeric answer.
func NumericAnswer(n int64) Answer {
	return Answer{Kind: KindNumeric, Amount: n}
}

// FormAnswer builds a composite_form answer from entered field amounts.
func FormAnswer(fields map[string]int64) Answer {
	return Answer{Kind: KindCompositeForm, Fields: fields}
}

// Contains reports whether a multi_choice answer includes value. Any other
// answer kind is treated as an empty set.
func (a Answer) Contains(value string) bool {
	if a.Kind != KindMultiChoice {
		return false
	}
	for _, v := range a.Values {
		if v == value {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the answer as the bare wire value for its kind.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindSingleChoice, KindBoolean:
		return json.Marshal(a.Value)
	case KindMultiChoice:
		vals := a.Values
		if vals == nil {
			vals = []string{}
		}
		return json.Marshal(vals)
	case KindNumeric:
		return json.Marshal(a.Amount)
	case KindCompositeForm:
		fields := a.Fields
		if fields == nil {
			fields = map[string]int64{}
		}
		return json.Marshal(fields)
	default:
		return nil, fmt.Errorf("answer kind %q is not submittable", a.Kind)
	}
}

// String renders the answer for diagnostics (trace output, test failures).
func (a Answer) String() string {
	switch a.Kind {
	case KindSingleChoice, KindBoolean:
		return a.Value
	case KindMultiChoice:
		return fmt.Sprintf("%v", a.Values)
	case KindNumeric:
		return fmt.Sprintf("%d", a.Amount)
	case KindCompositeForm:
		ids := make([]string, 0, len(a.Fields))
		for id := range a.Fields {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out := "{"
		for i, id := range ids {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %d", id, a.Fields[id])
		}
		return out + "}"
	default:
		return string(a.Kind)
	}
}
