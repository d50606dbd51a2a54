// Package schema defines the Go struct types for the survey document schema
// and provides strict YAML parsing.
package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StepKind enumerates the closed set of step input kinds.
type StepKind string

const (
	KindSingleChoice  StepKind = "single_choice"
	KindMultiChoice   StepKind = "multi_choice"
	KindNumeric       StepKind = "numeric"
	KindBoolean       StepKind = "boolean"
	KindCompositeForm StepKind = "composite_form"
	KindTerminal      StepKind = "terminal"
)

// StepKinds lists every valid step kind, in declaration order.
var StepKinds = []StepKind{
	KindSingleChoice, KindMultiChoice, KindNumeric,
	KindBoolean, KindCompositeForm, KindTerminal,
}

// Valid reports whether k is one of the declared step kinds.
func (k StepKind) Valid() bool {
	for _, v := range StepKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Choice reports whether the kind presents a list of options.
func (k StepKind) Choice() bool {
	return k == KindSingleChoice || k == KindMultiChoice || k == KindBoolean
}

// Option is a single selectable (value, label) pair of a choice step.
type Option struct {
	Value string `yaml:"value" json:"value" jsonschema:"required"`
	Label string `yaml:"label" json:"label" jsonschema:"required"`
}

// FieldDescriptor describes one named numeric sub-answer of a composite form
// step. Fields sharing a Group render together; a group boundary is the first
// field whose group differs from the previous field's group. Condition is a
// tag from the fixed visibility vocabulary, evaluated against answers of
// earlier steps — never against the form's own in-progress values.
type FieldDescriptor struct {
	ID        string `yaml:"id"                  json:"id" jsonschema:"required"`
	Label     string `yaml:"label"               json:"label" jsonschema:"required"`
	Required  bool   `yaml:"required,omitempty"  json:"required,omitempty"`
	Help      string `yaml:"help,omitempty"      json:"help,omitempty"`
	Group     string `yaml:"group,omitempty"     json:"group,omitempty"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// StepDescriptor is one question/prompt unit of the guided interview.
// Exactly one descriptor is current at any time; it is replaced wholesale on
// every successful step load, never mutated in place.
type StepDescriptor struct {
	ID         string            `yaml:"id"                    json:"step_id" jsonschema:"required"`
	Title      string            `yaml:"title"                 json:"title" jsonschema:"required"`
	Question   string            `yaml:"question,omitempty"    json:"question,omitempty"`
	Kind       StepKind          `yaml:"kind"                  json:"input_type" jsonschema:"required,enum=single_choice,enum=multi_choice,enum=numeric,enum=boolean,enum=composite_form,enum=terminal"`
	Options    []Option          `yaml:"options,omitempty"     json:"options,omitempty"`
	Fields     []FieldDescriptor `yaml:"fields,omitempty"      json:"fields,omitempty"`
	HelpText   string            `yaml:"help_text,omitempty"   json:"help_text,omitempty"`
	Progress   int               `yaml:"progress,omitempty"    json:"progress,omitempty"`
	TotalSteps int               `yaml:"total_steps,omitempty" json:"total_steps,omitempty"`
	IsFirst    bool              `yaml:"is_first,omitempty"    json:"is_first,omitempty"`
	IsLast     bool              `yaml:"is_last,omitempty"     json:"is_last,omitempty"`
}

// OptionLabel resolves an option value to its label, falling back to the
// value itself when the option is not declared.
func (s *StepDescriptor) OptionLabel(value string) string {
	for _, o := range s.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// HasOption reports whether value is one of the step's declared options.
func (s *StepDescriptor) HasOption(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Result is the externally computed financial summary that ends the
// interview. Immutable once received; consumed for display and for biasing
// free-chat fallback responses. All amounts are in KRW.
type Result struct {
	RepaymentRate         float64 `yaml:"repayment_rate"          json:"repayment_rate" jsonschema:"required"`
	MonthlyRepaymentTotal int64   `yaml:"monthly_repayment_total" json:"monthly_repayment_total"`
	TotalRepayment        int64   `yaml:"total_repayment"         json:"total_repayment"`
	TotalDebt             int64   `yaml:"total_debt"              json:"total_debt"`
	SecuredDebt           int64   `yaml:"secured_debt"            json:"secured_debt"`
	UnsecuredDebt         int64   `yaml:"unsecured_debt"          json:"unsecured_debt"`
	MonthlyIncome         int64   `yaml:"monthly_income"          json:"monthly_income"`
	LivingExpenses        int64   `yaml:"living_expenses"         json:"living_expenses"`
	MonthlyAvailable      int64   `yaml:"monthly_available"       json:"monthly_available"`
}

// Forgiven is the forgiveness/savings estimate, the only quantity derived
// client-side. Well-formed data never makes it negative; if it is, it is
// displayed as-is rather than clamped.
func (r *Result) Forgiven() int64 {
	return r.UnsecuredDebt - r.TotalRepayment
}

// Meta contains survey document metadata.
type Meta struct {
	Name        string `yaml:"name"                  json:"name" jsonschema:"required"`
	Title       string `yaml:"title,omitempty"       json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Survey is the top-level declarative interview document. It powers the
// in-process Local service, `counsel validate`, and `counsel schema`; a
// remote step service serves the same StepDescriptor shape one step at a
// time.
type Survey struct {
	APIVersion string           `yaml:"apiVersion"       json:"apiVersion" jsonschema:"required,enum=survey/v1"`
	Meta       Meta             `yaml:"meta"             json:"meta" jsonschema:"required"`
	Steps      []StepDescriptor `yaml:"steps"            json:"steps" jsonschema:"required"`
	Result     *Result          `yaml:"result,omitempty" json:"result,omitempty"`
}

// Step returns the step with the given ID, or nil.
func (s *Survey) Step(id string) *StepDescriptor {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// Load parses a survey document from a reader with strict field checking.
// Unknown YAML fields are errors, not silently dropped.
func Load(r io.Reader) (*Survey, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sv Survey
	if err := dec.Decode(&sv); err != nil {
		return nil, fmt.Errorf("parse survey: %w", err)
	}
	return &sv, nil
}

// LoadFile reads and strictly parses a survey document from disk.
func LoadFile(path string) (*Survey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open survey: %w", err)
	}
	defer f.Close()

	sv, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sv, nil
}
