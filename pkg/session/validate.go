package session

import (
	"fmt"
	"strings"

	"github.com/acrolabs/counsel/pkg/schema"
	"github.com/acrolabs/counsel/pkg/visibility"
)

// ValidationError rejects an answer before any service call is made. Reason
// is user-facing copy rendered inline at the input control.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid answer (%s): %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid answer: %s", e.Reason)
}

// validateNumericInput rejects input with no digits. Formatting characters
// (commas, spaces, a currency suffix) are tolerated and stripped during
// normalization. Used for form fields, where an explicit zero is a valid
// entry distinct from leaving the field empty.
func validateNumericInput(raw string) *ValidationError {
	if !strings.ContainsAny(raw, "0123456789") {
		return &ValidationError{Reason: "숫자를 입력해주세요."}
	}
	return nil
}

// validateNumericAnswer rejects a numeric step answer unless it normalizes to
// a positive amount. Zero means no value was really entered.
func validateNumericAnswer(n int64) *ValidationError {
	if n <= 0 {
		return &ValidationError{Reason: "숫자를 입력해주세요."}
	}
	return nil
}

// validateSelection rejects an empty multi-choice confirmation.
func validateSelection(values []string) *ValidationError {
	if len(values) == 0 {
		return &ValidationError{Reason: "항목을 선택해주세요."}
	}
	return nil
}

// validateForm checks that every required field among the currently visible
// ones has a value. Hidden fields are never required regardless of their
// declaration: visibility is computed from prior answers at submit time.
func validateForm(fields []schema.FieldDescriptor, answers map[string]schema.Answer, values map[string]int64) *ValidationError {
	for _, f := range visibility.VisibleFields(fields, answers) {
		if !f.Required {
			continue
		}
		if _, ok := values[f.ID]; !ok {
			return &ValidationError{
				Field:  f.ID,
				Reason: fmt.Sprintf("%s 항목을 입력해주세요.", f.Label),
			}
		}
	}
	return nil
}
