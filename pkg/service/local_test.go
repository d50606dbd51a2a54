package service

import (
	"context"
	"errors"
	"testing"

	"github.com/acrolabs/counsel/pkg/schema"
)

func TestDefaultSurvey_Valid(t *testing.T) {
	sv, err := DefaultSurvey()
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range schema.ValidateDomain(sv) {
		if e.Severity == "error" {
			t.Errorf("embedded survey invalid: %s", e)
		}
	}
	if sv.Result == nil {
		t.Fatal("embedded survey must declare a result")
	}
	if got := sv.Result.Forgiven(); got != 32000000 {
		t.Errorf("embedded result forgiveness = %d, want 32000000", got)
	}
}

// answerFor builds a plausible answer for any non-terminal step kind.
func answerFor(step *schema.StepDescriptor) schema.Answer {
	switch step.Kind {
	case schema.KindSingleChoice, schema.KindBoolean:
		return schema.SingleAnswer(step.Kind, step.Options[0].Value)
	case schema.KindMultiChoice:
		return schema.MultiAnswer([]string{step.Options[0].Value})
	case schema.KindNumeric:
		return schema.NumericAnswer(1000000)
	default:
		return schema.FormAnswer(map[string]int64{"cash_amount": 0})
	}
}

// Walk the embedded survey end to end: every submit yields the next step id
// until the terminal step is current, then the result is computable.
func TestLocal_FullWalkthrough(t *testing.T) {
	ctx := context.Background()
	sv, err := DefaultSurvey()
	if err != nil {
		t.Fatal(err)
	}
	local := NewLocal(sv)

	id, err := local.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; ; i++ {
		step, err := local.CurrentStep(ctx, id)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if step.Progress != i+1 || step.TotalSteps != len(sv.Steps) {
			t.Errorf("step %s: progress %d/%d, want %d/%d",
				step.ID, step.Progress, step.TotalSteps, i+1, len(sv.Steps))
		}

		if step.Kind == schema.KindTerminal {
			if !step.IsLast {
				t.Error("terminal step should be last")
			}
			break
		}

		outcome, err := local.SubmitAnswer(ctx, id, step.ID, answerFor(step))
		if err != nil {
			t.Fatalf("submit %s: %v", step.ID, err)
		}
		if outcome.IsComplete {
			t.Fatalf("submit %s: unexpected completion before terminal step", step.ID)
		}
		if outcome.NextStepID == "" {
			t.Fatalf("submit %s: no next step", step.ID)
		}
	}

	res, err := local.ComputeResult(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if res.RepaymentRate != 18.5 {
		t.Errorf("repayment rate = %.1f, want 18.5", res.RepaymentRate)
	}

	if got := len(local.Answers(id)); got != len(sv.Steps)-1 {
		t.Errorf("recorded %d answers, want %d", got, len(sv.Steps)-1)
	}
}

func TestLocal_SubmitWrongStep(t *testing.T) {
	ctx := context.Background()
	sv, _ := DefaultSurvey()
	local := NewLocal(sv)
	id, _ := local.CreateSession(ctx)

	_, err := local.SubmitAnswer(ctx, id, "step_06_total_debt", schema.NumericAnswer(1))
	var serr *AnswerSubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *AnswerSubmitError, got %v", err)
	}
}

func TestLocal_UnknownSession(t *testing.T) {
	ctx := context.Background()
	sv, _ := DefaultSurvey()
	local := NewLocal(sv)

	var lerr *StepLoadError
	if _, err := local.CurrentStep(ctx, "nope"); !errors.As(err, &lerr) {
		t.Errorf("expected *StepLoadError, got %v", err)
	}
	var cerr *ComputeError
	if _, err := local.ComputeResult(ctx, "nope"); !errors.As(err, &cerr) {
		t.Errorf("expected *ComputeError, got %v", err)
	}
}

// Sessions are independent: answers in one never leak into another.
func TestLocal_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	sv, _ := DefaultSurvey()
	local := NewLocal(sv)

	a, _ := local.CreateSession(ctx)
	b, _ := local.CreateSession(ctx)

	stepA, _ := local.CurrentStep(ctx, a)
	if _, err := local.SubmitAnswer(ctx, a, stepA.ID, answerFor(stepA)); err != nil {
		t.Fatal(err)
	}

	stepB, err := local.CurrentStep(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if stepB.Progress != 1 {
		t.Errorf("session b advanced to %d", stepB.Progress)
	}
	if len(local.Answers(b)) != 0 {
		t.Error("session b has leaked answers")
	}
}
