package service

import "fmt"

// SessionCreateError reports a failed session creation. The controller
// returns all the way to Idle on this error; no partial session is retained.
type SessionCreateError struct {
	Err error
}

func (e *SessionCreateError) Error() string { return fmt.Sprintf("create session: %v", e.Err) }
func (e *SessionCreateError) Unwrap() error { return e.Err }

// StepLoadError reports a failed step-descriptor load. Retryable: the
// controller stays in its awaiting-step state.
type StepLoadError struct {
	SessionID string
	Err       error
}

func (e *StepLoadError) Error() string {
	return fmt.Sprintf("load step (session %s): %v", e.SessionID, e.Err)
}
func (e *StepLoadError) Unwrap() error { return e.Err }

// AnswerSubmitError reports a failed answer submission. Retryable: the
// locally recorded answer is kept and reused on resubmission.
type AnswerSubmitError struct {
	StepID string
	Err    error
}

func (e *AnswerSubmitError) Error() string {
	return fmt.Sprintf("submit answer for step %s: %v", e.StepID, e.Err)
}
func (e *AnswerSubmitError) Unwrap() error { return e.Err }

// ComputeError reports a failed result computation.
type ComputeError struct {
	SessionID string
	Err       error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute result (session %s): %v", e.SessionID, e.Err)
}
func (e *ComputeError) Unwrap() error { return e.Err }
