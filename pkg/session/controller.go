package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/acrolabs/counsel/pkg/chat"
	"github.com/acrolabs/counsel/pkg/format"
	"github.com/acrolabs/counsel/pkg/schema"
	"github.com/acrolabs/counsel/pkg/service"
	"github.com/acrolabs/counsel/pkg/visibility"
)

// Controller is the single-writer session state machine. It is not
// goroutine-safe: all methods must be called from one goroutine (the TUI
// update loop, or the test). Service calls happen elsewhere; their outcomes
// come back through the Finish methods with the Token that requested them.
type Controller struct {
	phase     Phase
	sessionID string

	transcript []Message
	step       *schema.StepDescriptor
	stepCount  int
	answers    map[string]schema.Answer
	result     *schema.Result

	// In-progress input state for the current step.
	selected map[string]bool
	form     map[string]int64

	gens  map[CallKind]uint64
	trace *TranscriptWriter
}

// New builds an idle controller whose transcript opens with the greeting.
func New() *Controller {
	c := &Controller{
		phase:    PhaseIdle,
		answers:  make(map[string]schema.Answer),
		selected: make(map[string]bool),
		form:     make(map[string]int64),
		gens:     make(map[CallKind]uint64),
	}
	c.append(newMessage(OriginAssistant, msgGreeting))
	return c
}

// SetTrace attaches a transcript trace writer. Every message appended from
// then on is mirrored to the trace; write failures are reported to stderr and
// never interrupt the session.
func (c *Controller) SetTrace(w *TranscriptWriter) { c.trace = w }

// ─── accessors ───

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) SessionID() string { return c.sessionID }

func (c *Controller) CurrentStep() *schema.StepDescriptor { return c.step }

func (c *Controller) Result() *schema.Result { return c.result }

// StepCount is the number of answers accepted by the service so far.
func (c *Controller) StepCount() int { return c.stepCount }

// Transcript returns the messages in append order. The slice is shared;
// callers must not mutate it.
func (c *Controller) Transcript() []Message { return c.transcript }

// Answers returns a copy of the recorded answers keyed by step ID.
func (c *Controller) Answers() map[string]schema.Answer {
	out := make(map[string]schema.Answer, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Selected reports whether a multi-choice option value is currently toggled
// on for the current step.
func (c *Controller) Selected(value string) bool { return c.selected[value] }

// FormValue returns the in-progress value of a form field and whether one has
// been entered. Absent and zero are distinct states.
func (c *Controller) FormValue(fieldID string) (int64, bool) {
	v, ok := c.form[fieldID]
	return v, ok
}

// SetFormValue records or clears one form field from raw input. Empty input
// clears the field (absent, not zero); anything containing a digit is
// normalized and stored.
func (c *Controller) SetFormValue(fieldID, raw string) error {
	if c.phase != PhaseAwaitingAnswer || c.step == nil || c.step.Kind != schema.KindCompositeForm {
		return fmt.Errorf("phase %s: no form to edit", c.phase)
	}
	if strings.TrimSpace(raw) == "" {
		delete(c.form, fieldID)
		return nil
	}
	if verr := validateNumericInput(raw); verr != nil {
		return verr
	}
	c.form[fieldID] = format.NormalizeNumeric(raw)
	return nil
}

// VisibleFields returns the currently relevant fields of the current
// composite form step, in declaration order.
func (c *Controller) VisibleFields() []schema.FieldDescriptor {
	if c.step == nil {
		return nil
	}
	return visibility.VisibleFields(c.step.Fields, c.answers)
}

// ─── interview flow ───

// Start begins the interview: appends the acknowledgment and requests
// session creation.
func (c *Controller) Start() (Token, error) {
	if c.phase != PhaseIdle {
		return Token{}, fmt.Errorf("phase %s: session already started", c.phase)
	}
	c.phase = PhaseStarting
	c.append(newMessage(OriginAssistant, msgStartAck))
	return c.issue(CallStart), nil
}

// FinishStart applies the outcome of session creation. On success it moves to
// awaiting-step and returns the token for the first step load. On failure the
// controller returns to Idle so Start can be retried from scratch.
func (c *Controller) FinishStart(tok Token, sessionID string, err error) (Token, bool) {
	if c.stale(tok) || c.phase != PhaseStarting {
		return Token{}, false
	}
	if err != nil {
		c.append(newMessage(OriginAssistant, msgServerConnectFailed))
		c.phase = PhaseIdle
		return Token{}, false
	}
	c.sessionID = sessionID
	c.phase = PhaseAwaitingStep
	return c.issue(CallLoadStep), true
}

// LoadStep requests a (re)load of the current step. Used for retry after a
// failed load; the happy path gets its load tokens from FinishStart and
// FinishSubmit.
func (c *Controller) LoadStep() (Token, error) {
	if c.phase != PhaseAwaitingStep {
		return Token{}, fmt.Errorf("phase %s: not awaiting a step", c.phase)
	}
	return c.issue(CallLoadStep), nil
}

// FinishLoadStep applies a loaded step descriptor. A terminal step ends the
// questioning and immediately requests the result computation, returning its
// token. On failure the controller stays in awaiting-step for a retry.
func (c *Controller) FinishLoadStep(tok Token, step *schema.StepDescriptor, err error) (Token, bool) {
	if c.stale(tok) || c.phase != PhaseAwaitingStep {
		return Token{}, false
	}
	if err != nil {
		c.append(newMessage(OriginAssistant, msgStepLoadFailed))
		return Token{}, false
	}

	c.step = step
	c.selected = make(map[string]bool)
	c.form = make(map[string]int64)

	if step.Kind == schema.KindTerminal {
		if step.Question != "" {
			c.append(newMessage(OriginAssistant, step.Question))
		}
		c.phase = PhaseCompleting
		return c.issue(CallCompute), true
	}

	c.append(newMessage(OriginAssistant, c.prompt(step)))
	c.phase = PhaseAwaitingAnswer
	return Token{}, false
}

// prompt renders the step's transcript question, with help text appended as a
// secondary line when present.
func (c *Controller) prompt(step *schema.StepDescriptor) string {
	text := step.Question
	if text == "" {
		text = step.Title
	}
	if step.HelpText != "" {
		text += "\n\n_" + step.HelpText + "_"
	}
	return text
}

// Select handles a choice. Single-choice and boolean steps submit
// immediately; multi-choice steps toggle the option and wait for
// ConfirmSelection. The returned bool reports whether a submission was
// issued.
func (c *Controller) Select(value string) (Token, bool, error) {
	if c.phase != PhaseAwaitingAnswer || c.step == nil {
		return Token{}, false, fmt.Errorf("phase %s: no step awaiting an answer", c.phase)
	}
	if !c.step.HasOption(value) {
		return Token{}, false, fmt.Errorf("step %s: unknown option %q", c.step.ID, value)
	}

	switch c.step.Kind {
	case schema.KindSingleChoice, schema.KindBoolean:
		c.answers[c.step.ID] = schema.SingleAnswer(c.step.Kind, value)
		c.append(newMessage(OriginParticipant, c.step.OptionLabel(value)))
		c.phase = PhaseSubmitting
		return c.issue(CallSubmit), true, nil
	case schema.KindMultiChoice:
		c.selected[value] = !c.selected[value]
		return Token{}, false, nil
	default:
		return Token{}, false, fmt.Errorf("step %s: kind %s takes no option selection", c.step.ID, c.step.Kind)
	}
}

// ConfirmSelection submits the toggled multi-choice set, preserving option
// declaration order.
func (c *Controller) ConfirmSelection() (Token, error) {
	if c.phase != PhaseAwaitingAnswer || c.step == nil || c.step.Kind != schema.KindMultiChoice {
		return Token{}, fmt.Errorf("phase %s: no selection to confirm", c.phase)
	}

	var values, labels []string
	for _, o := range c.step.Options {
		if c.selected[o.Value] {
			values = append(values, o.Value)
			labels = append(labels, o.Label)
		}
	}
	if verr := validateSelection(values); verr != nil {
		return Token{}, verr
	}

	c.answers[c.step.ID] = schema.MultiAnswer(values)
	c.append(newMessage(OriginParticipant, strings.Join(labels, ", ")))
	c.phase = PhaseSubmitting
	return c.issue(CallSubmit), nil
}

// SubmitNumeric validates, normalizes and submits a numeric answer. A
// rejected answer changes nothing: no message, no phase change, no call.
func (c *Controller) SubmitNumeric(raw string) (Token, error) {
	if c.phase != PhaseAwaitingAnswer || c.step == nil || c.step.Kind != schema.KindNumeric {
		return Token{}, fmt.Errorf("phase %s: no numeric step awaiting an answer", c.phase)
	}
	n := format.NormalizeNumeric(raw)
	if verr := validateNumericAnswer(n); verr != nil {
		return Token{}, verr
	}
	c.answers[c.step.ID] = schema.NumericAnswer(n)
	c.append(newMessage(OriginParticipant, format.DisplayWon(n)))
	c.phase = PhaseSubmitting
	return c.issue(CallSubmit), nil
}

// SubmitForm submits the composite form. Only currently visible fields are
// included; a field left empty is absent from the answer, not zero. Required
// visible fields must have a value.
func (c *Controller) SubmitForm() (Token, error) {
	if c.phase != PhaseAwaitingAnswer || c.step == nil || c.step.Kind != schema.KindCompositeForm {
		return Token{}, fmt.Errorf("phase %s: no form awaiting an answer", c.phase)
	}
	if verr := validateForm(c.step.Fields, c.answers, c.form); verr != nil {
		return Token{}, verr
	}

	fields := make(map[string]int64)
	for _, f := range visibility.VisibleFields(c.step.Fields, c.answers) {
		if v, ok := c.form[f.ID]; ok {
			fields[f.ID] = v
		}
	}

	c.answers[c.step.ID] = schema.FormAnswer(fields)
	c.append(newMessage(OriginParticipant, msgFormSubmitted))
	c.phase = PhaseSubmitting
	return c.issue(CallSubmit), nil
}

// RetrySubmit resubmits the recorded answer for the current step after a
// failed submission.
func (c *Controller) RetrySubmit() (Token, error) {
	if c.phase != PhaseAwaitingAnswer || c.step == nil {
		return Token{}, fmt.Errorf("phase %s: nothing to resubmit", c.phase)
	}
	if _, ok := c.answers[c.step.ID]; !ok {
		return Token{}, fmt.Errorf("step %s: no recorded answer", c.step.ID)
	}
	c.phase = PhaseSubmitting
	return c.issue(CallSubmit), nil
}

// PendingAnswer returns the recorded answer for the current step, for the
// caller dispatching a submit call.
func (c *Controller) PendingAnswer() (stepID string, answer schema.Answer, ok bool) {
	if c.step == nil {
		return "", schema.Answer{}, false
	}
	a, ok := c.answers[c.step.ID]
	return c.step.ID, a, ok
}

// FinishSubmit applies a submission outcome. Completion moves to Completing
// and returns the compute token; otherwise the next step load token is
// returned. On failure the phase returns to awaiting-answer with the recorded
// answer kept for RetrySubmit.
func (c *Controller) FinishSubmit(tok Token, outcome service.SubmitOutcome, err error) (Token, bool) {
	if c.stale(tok) || c.phase != PhaseSubmitting {
		return Token{}, false
	}
	if err != nil {
		c.append(newMessage(OriginAssistant, msgSubmitFailed))
		c.phase = PhaseAwaitingAnswer
		return Token{}, false
	}

	c.stepCount++
	if outcome.IsComplete {
		c.phase = PhaseCompleting
		return c.issue(CallCompute), true
	}
	c.phase = PhaseAwaitingStep
	return c.issue(CallLoadStep), true
}

// FinishCompute applies the computed result: the completion note followed by
// the summary card. On failure the controller stays in Completing and
// RetryCompute can request the computation again.
func (c *Controller) FinishCompute(tok Token, res *schema.Result, err error) {
	if c.stale(tok) || c.phase != PhaseCompleting {
		return
	}
	if err != nil {
		c.append(newMessage(OriginAssistant, msgComputeFailed))
		return
	}

	c.result = res
	c.append(newMessage(OriginAssistant, msgAnalysisDone))

	card := newMessage(OriginAssistant, "")
	card.Card = chat.BuildCard(res)
	c.append(card)
}

// RetryCompute requests the result computation again after a failure.
func (c *Controller) RetryCompute() (Token, error) {
	if c.phase != PhaseCompleting || c.result != nil {
		return Token{}, fmt.Errorf("phase %s: no computation to retry", c.phase)
	}
	return c.issue(CallCompute), nil
}

// ─── free chat ───

// Invite appends the follow-up invitation and opens free chat. Valid only
// once the result has been received.
func (c *Controller) Invite() error {
	if c.phase != PhaseCompleting || c.result == nil {
		return fmt.Errorf("phase %s: result not available", c.phase)
	}
	c.append(newMessage(OriginAssistant, msgInvitation))
	c.phase = PhaseFreeChat
	return nil
}

// Ask answers a free-text follow-up question from the canned decision table
// and appends both sides to the transcript. The response is returned for
// callers that render it outside the transcript.
func (c *Controller) Ask(query string) (string, error) {
	if c.phase != PhaseFreeChat {
		return "", fmt.Errorf("phase %s: free chat not open", c.phase)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", &ValidationError{Reason: "질문을 입력해주세요."}
	}

	c.append(newMessage(OriginParticipant, query))
	resp := chat.Respond(query, c.result)
	c.append(newMessage(OriginAssistant, resp))
	return resp, nil
}

// Reset discards the session and returns to the initial greeting. All
// generation counters are bumped so outcomes of calls still in flight are
// discarded when they arrive.
func (c *Controller) Reset() {
	for _, k := range []CallKind{CallStart, CallLoadStep, CallSubmit, CallCompute} {
		c.gens[k]++
	}
	c.phase = PhaseIdle
	c.sessionID = ""
	c.transcript = nil
	c.step = nil
	c.stepCount = 0
	c.answers = make(map[string]schema.Answer)
	c.result = nil
	c.selected = make(map[string]bool)
	c.form = make(map[string]int64)
	c.append(newMessage(OriginAssistant, msgGreeting))
}

// ─── internals ───

func (c *Controller) issue(kind CallKind) Token {
	c.gens[kind]++
	return Token{Kind: kind, Gen: c.gens[kind]}
}

func (c *Controller) stale(tok Token) bool {
	return tok.Gen != c.gens[tok.Kind]
}

func (c *Controller) append(m Message) {
	c.transcript = append(c.transcript, m)
	if c.trace != nil {
		if err := c.trace.Write(c.sessionID, m); err != nil {
			fmt.Fprintf(os.Stderr, "session: trace write: %v\n", err)
		}
	}
}
