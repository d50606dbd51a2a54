// Package service defines the contract with the external step-definition and
// scoring service, plus two implementations: an HTTP client for the remote
// service and an in-process Local service backed by a survey document.
package service

import (
	"context"

	"github.com/acrolabs/counsel/pkg/schema"
)

// SubmitOutcome is the service's reply to a submitted answer: either a
// completion signal or the identifier of the next step to load.
type SubmitOutcome struct {
	IsComplete bool   `json:"is_complete"`
	NextStepID string `json:"next_step_id,omitempty"`
}

// SurveyService is the consumed contract. Implementations may not be
// idempotent; the caller guarantees at most one in-flight call per kind and
// decides about retries itself.
type SurveyService interface {
	// CreateSession opens a new interview session and returns its opaque
	// identifier. Fails with *SessionCreateError.
	CreateSession(ctx context.Context) (string, error)

	// CurrentStep returns the descriptor of the session's current step.
	// Fails with *StepLoadError.
	CurrentStep(ctx context.Context, sessionID string) (*schema.StepDescriptor, error)

	// SubmitAnswer records an answer for the given step.
	// Fails with *AnswerSubmitError.
	SubmitAnswer(ctx context.Context, sessionID, stepID string, answer schema.Answer) (SubmitOutcome, error)

	// ComputeResult computes the final financial summary from the full
	// answer set. Fails with *ComputeError.
	ComputeResult(ctx context.Context, sessionID string) (*schema.Result, error)
}
