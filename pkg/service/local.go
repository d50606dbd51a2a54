package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/acrolabs/counsel/pkg/schema"
)

//go:embed default_survey.yaml
var defaultSurveyYAML []byte

// DefaultSurvey parses the embedded debt-rehabilitation interview document.
func DefaultSurvey() (*schema.Survey, error) {
	return schema.Load(bytes.NewReader(defaultSurveyYAML))
}

// Local serves a survey document in-process: a sequential cursor over the
// document's steps plus the document's canned result. It exists for offline
// use and for exercising the full session flow in tests without a backend.
type Local struct {
	survey *schema.Survey

	mu       sync.Mutex
	sessions map[string]*localSession
}

type localSession struct {
	cursor  int
	answers map[string]schema.Answer
}

// NewLocal builds a Local service over the given survey. The survey must have
// at least one step; validate documents before serving them.
func NewLocal(sv *schema.Survey) *Local {
	return &Local{
		survey:   sv,
		sessions: make(map[string]*localSession),
	}
}

var _ SurveyService = (*Local)(nil)

func (l *Local) CreateSession(ctx context.Context) (string, error) {
	if len(l.survey.Steps) == 0 {
		return "", &SessionCreateError{Err: fmt.Errorf("survey %q has no steps", l.survey.Meta.Name)}
	}

	id := uuid.NewString()
	l.mu.Lock()
	l.sessions[id] = &localSession{answers: make(map[string]schema.Answer)}
	l.mu.Unlock()
	return id, nil
}

func (l *Local) CurrentStep(ctx context.Context, sessionID string) (*schema.StepDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions[sessionID]
	if !ok {
		return nil, &StepLoadError{SessionID: sessionID, Err: fmt.Errorf("unknown session")}
	}
	if sess.cursor >= len(l.survey.Steps) {
		return nil, &StepLoadError{SessionID: sessionID, Err: fmt.Errorf("session exhausted")}
	}

	// Copy so callers can never mutate the document, then fill the
	// presentation fields a remote service would compute.
	step := l.survey.Steps[sess.cursor]
	step.Progress = sess.cursor + 1
	step.TotalSteps = len(l.survey.Steps)
	step.IsFirst = sess.cursor == 0
	step.IsLast = sess.cursor == len(l.survey.Steps)-1
	return &step, nil
}

func (l *Local) SubmitAnswer(ctx context.Context, sessionID, stepID string, answer schema.Answer) (SubmitOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions[sessionID]
	if !ok {
		return SubmitOutcome{}, &AnswerSubmitError{StepID: stepID, Err: fmt.Errorf("unknown session %s", sessionID)}
	}
	if sess.cursor >= len(l.survey.Steps) {
		return SubmitOutcome{}, &AnswerSubmitError{StepID: stepID, Err: fmt.Errorf("session already complete")}
	}
	current := l.survey.Steps[sess.cursor]
	if current.ID != stepID {
		return SubmitOutcome{}, &AnswerSubmitError{StepID: stepID, Err: fmt.Errorf("current step is %s", current.ID)}
	}
	if current.Kind == schema.KindTerminal {
		return SubmitOutcome{}, &AnswerSubmitError{StepID: stepID, Err: fmt.Errorf("terminal step takes no answer")}
	}

	sess.answers[stepID] = answer
	sess.cursor++
	if sess.cursor >= len(l.survey.Steps) {
		return SubmitOutcome{IsComplete: true}, nil
	}
	return SubmitOutcome{NextStepID: l.survey.Steps[sess.cursor].ID}, nil
}

func (l *Local) ComputeResult(ctx context.Context, sessionID string) (*schema.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sessions[sessionID]; !ok {
		return nil, &ComputeError{SessionID: sessionID, Err: fmt.Errorf("unknown session")}
	}
	if l.survey.Result == nil {
		return nil, &ComputeError{SessionID: sessionID, Err: fmt.Errorf("survey %q declares no result", l.survey.Meta.Name)}
	}

	res := *l.survey.Result
	return &res, nil
}

// Answers returns a copy of the answers recorded for a session. Test and
// debugging aid; the interview flow itself never reads answers back.
func (l *Local) Answers(sessionID string) map[string]schema.Answer {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make(map[string]schema.Answer, len(sess.answers))
	for k, v := range sess.answers {
		out[k] = v
	}
	return out
}
