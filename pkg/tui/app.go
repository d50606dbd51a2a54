package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acrolabs/counsel/pkg/schema"
	"github.com/acrolabs/counsel/pkg/service"
	"github.com/acrolabs/counsel/pkg/session"
)

// Selection and caption pacing. The selection delay keeps the highlighted
// choice visible for a beat before the answer is sent.
const (
	selectDelay     = 300 * time.Millisecond
	captionInterval = 1200 * time.Millisecond
	inviteDelay     = 900 * time.Millisecond
)

// --- Tea messages ---

// startDoneMsg is sent after session creation completes.
type startDoneMsg struct {
	tok       session.Token
	sessionID string
	err       error
}

// stepLoadedMsg is sent after a step load completes.
type stepLoadedMsg struct {
	tok  session.Token
	step *schema.StepDescriptor
	err  error
}

// submitDoneMsg is sent after an answer submission completes.
type submitDoneMsg struct {
	tok     session.Token
	outcome service.SubmitOutcome
	err     error
}

// computeDoneMsg is sent after the result computation completes.
type computeDoneMsg struct {
	tok session.Token
	res *schema.Result
	err error
}

// debounceFiredMsg fires the delayed submission of a highlighted choice.
type debounceFiredMsg struct{ gen int }

// captionTickMsg advances the computation caption.
type captionTickMsg struct{}

// inviteMsg opens free chat after the result card has been shown.
type inviteMsg struct{}

// --- Model ---

// Model is the top-level Bubble Tea model for the chat interview.
type Model struct {
	ctrl *session.Controller
	svc  service.SurveyService

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Choice state
	cursor      int
	pending     string // choice value awaiting the selection delay
	debounceGen int

	// Form state
	formIdx int

	captionIdx   int
	inlineErr    string
	retryCompute bool

	width  int
	height int
	ready  bool
}

// Config holds the parameters needed to launch the TUI.
type Config struct {
	Service service.SurveyService
	Trace   *session.TranscriptWriter
}

// Run builds the model and runs the Bubble Tea program until quit.
func Run(cfg Config) error {
	ctrl := session.New()
	if cfg.Trace != nil {
		ctrl.SetTrace(cfg.Trace)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ti := textinput.New()
	ti.CharLimit = 200

	m := Model{
		ctrl:    ctrl,
		svc:     cfg.Service,
		spinner: sp,
		input:   ti,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// dispatch turns a controller token into the service call it requested. The
// session data the call needs is captured here, on the update goroutine; the
// call itself runs on the command goroutine.
func (m *Model) dispatch(tok session.Token) tea.Cmd {
	sessionID := m.ctrl.SessionID()
	switch tok.Kind {
	case session.CallStart:
		return func() tea.Msg {
			id, err := m.svc.CreateSession(context.Background())
			return startDoneMsg{tok: tok, sessionID: id, err: err}
		}
	case session.CallLoadStep:
		return func() tea.Msg {
			step, err := m.svc.CurrentStep(context.Background(), sessionID)
			return stepLoadedMsg{tok: tok, step: step, err: err}
		}
	case session.CallSubmit:
		stepID, answer, ok := m.ctrl.PendingAnswer()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			outcome, err := m.svc.SubmitAnswer(context.Background(), sessionID, stepID, answer)
			return submitDoneMsg{tok: tok, outcome: outcome, err: err}
		}
	case session.CallCompute:
		return func() tea.Msg {
			res, err := m.svc.ComputeResult(context.Background(), sessionID)
			return computeDoneMsg{tok: tok, res: res, err: err}
		}
	}
	return nil
}

func captionTick() tea.Cmd {
	return tea.Tick(captionInterval, func(time.Time) tea.Msg { return captionTickMsg{} })
}

// Update is the single event loop: keys, service outcomes, timers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - m.chromeHeight()
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startDoneMsg:
		next, ok := m.ctrl.FinishStart(msg.tok, msg.sessionID, msg.err)
		m.refreshTranscript()
		if ok {
			return m, m.dispatch(next)
		}
		return m, nil

	case stepLoadedMsg:
		next, ok := m.ctrl.FinishLoadStep(msg.tok, msg.step, msg.err)
		m.resetInputFor(m.ctrl.CurrentStep())
		m.refreshTranscript()
		if ok {
			// Terminal step: result computation is already requested.
			m.captionIdx = 0
			return m, tea.Batch(m.dispatch(next), captionTick())
		}
		return m, nil

	case submitDoneMsg:
		next, ok := m.ctrl.FinishSubmit(msg.tok, msg.outcome, msg.err)
		m.refreshTranscript()
		if !ok {
			return m, nil
		}
		if next.Kind == session.CallCompute {
			m.captionIdx = 0
			return m, tea.Batch(m.dispatch(next), captionTick())
		}
		return m, m.dispatch(next)

	case computeDoneMsg:
		m.ctrl.FinishCompute(msg.tok, msg.res, msg.err)
		m.refreshTranscript()
		if m.ctrl.Result() == nil {
			if m.ctrl.Phase() == session.PhaseCompleting {
				m.retryCompute = true
			}
			return m, nil
		}
		m.retryCompute = false
		return m, tea.Tick(inviteDelay, func(time.Time) tea.Msg { return inviteMsg{} })

	case inviteMsg:
		if err := m.ctrl.Invite(); err == nil {
			m.input.Reset()
			m.input.Placeholder = "궁금하신 점을 입력하세요"
			m.input.Focus()
			m.refreshTranscript()
		}
		return m, nil

	case captionTickMsg:
		if m.ctrl.Phase() == session.PhaseCompleting && m.ctrl.Result() == nil && !m.retryCompute {
			m.captionIdx = (m.captionIdx + 1) % len(session.ComputeCaptions)
			return m, captionTick()
		}
		return m, nil

	case debounceFiredMsg:
		if msg.gen != m.debounceGen || m.pending == "" {
			return m, nil
		}
		value := m.pending
		m.pending = ""
		tok, issued, err := m.ctrl.Select(value)
		m.refreshTranscript()
		if err != nil || !issued {
			return m, nil
		}
		return m, m.dispatch(tok)
	}

	return m, nil
}

// handleKey routes a key press by phase and step kind.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m.ctrl.Reset()
		m.pending = ""
		m.debounceGen++
		m.inlineErr = ""
		m.retryCompute = false
		m.input.Reset()
		m.input.Blur()
		m.refreshTranscript()
		return m, nil
	}

	switch m.ctrl.Phase() {
	case session.PhaseIdle:
		if msg.String() == "enter" {
			tok, err := m.ctrl.Start()
			if err != nil {
				return m, nil
			}
			m.refreshTranscript()
			return m, m.dispatch(tok)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}

	case session.PhaseAwaitingStep:
		if msg.String() == "r" {
			if tok, err := m.ctrl.LoadStep(); err == nil {
				return m, m.dispatch(tok)
			}
		}

	case session.PhaseAwaitingAnswer:
		return m.handleAnswerKey(msg)

	case session.PhaseCompleting:
		if m.retryCompute && msg.String() == "r" {
			if tok, err := m.ctrl.RetryCompute(); err == nil {
				m.retryCompute = false
				m.captionIdx = 0
				return m, tea.Batch(m.dispatch(tok), captionTick())
			}
		}

	case session.PhaseFreeChat:
		if msg.String() == "enter" {
			if _, err := m.ctrl.Ask(m.input.Value()); err == nil {
				m.input.Reset()
				m.refreshTranscript()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Scrollback works in every non-typing phase.
	if !m.input.Focused() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleAnswerKey handles input for the current step's control.
func (m Model) handleAnswerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.ctrl.CurrentStep()
	if step == nil {
		return m, nil
	}

	switch step.Kind {
	case schema.KindSingleChoice, schema.KindBoolean, schema.KindMultiChoice:
		return m.handleChoiceKey(msg, step)
	case schema.KindNumeric:
		return m.handleNumericKey(msg)
	case schema.KindCompositeForm:
		return m.handleFormKey(msg, step)
	}
	return m, nil
}

func (m Model) handleChoiceKey(msg tea.KeyMsg, step *schema.StepDescriptor) (tea.Model, tea.Cmd) {
	if m.pending != "" {
		// Selection already made; ignore input until it fires.
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(step.Options)-1 {
			m.cursor++
		}
	case " ":
		if step.Kind == schema.KindMultiChoice {
			_, _, _ = m.ctrl.Select(step.Options[m.cursor].Value)
		}
	case "enter":
		if step.Kind == schema.KindMultiChoice {
			tok, err := m.ctrl.ConfirmSelection()
			if err != nil {
				m.inlineErr = userReason(err)
				return m, nil
			}
			m.inlineErr = ""
			m.refreshTranscript()
			return m, m.dispatch(tok)
		}
		m.pending = step.Options[m.cursor].Value
		m.debounceGen++
		gen := m.debounceGen
		return m, tea.Tick(selectDelay, func(time.Time) tea.Msg { return debounceFiredMsg{gen: gen} })
	}
	return m, nil
}

func (m Model) handleNumericKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		tok, err := m.ctrl.SubmitNumeric(m.input.Value())
		if err != nil {
			m.inlineErr = userReason(err)
			return m, nil
		}
		m.inlineErr = ""
		m.input.Reset()
		m.input.Blur()
		m.refreshTranscript()
		return m, m.dispatch(tok)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg, step *schema.StepDescriptor) (tea.Model, tea.Cmd) {
	fields := m.ctrl.VisibleFields()
	if len(fields) == 0 {
		if msg.String() == "enter" {
			return m.submitForm()
		}
		return m, nil
	}
	if m.formIdx >= len(fields) {
		m.formIdx = len(fields) - 1
	}

	switch msg.String() {
	case "up", "shift+tab":
		m.saveFormField(fields[m.formIdx].ID)
		if m.formIdx > 0 {
			m.formIdx--
		}
		m.loadFormField(fields[m.formIdx].ID)
		return m, nil
	case "down", "tab":
		m.saveFormField(fields[m.formIdx].ID)
		if m.formIdx < len(fields)-1 {
			m.formIdx++
		}
		m.loadFormField(fields[m.formIdx].ID)
		return m, nil
	case "enter":
		m.saveFormField(fields[m.formIdx].ID)
		if m.formIdx < len(fields)-1 {
			m.formIdx++
			m.loadFormField(fields[m.formIdx].ID)
			return m, nil
		}
		return m.submitForm()
	case "ctrl+s":
		m.saveFormField(fields[m.formIdx].ID)
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	tok, err := m.ctrl.SubmitForm()
	if err != nil {
		m.inlineErr = userReason(err)
		return m, nil
	}
	m.inlineErr = ""
	m.input.Reset()
	m.input.Blur()
	m.refreshTranscript()
	return m, m.dispatch(tok)
}

// saveFormField pushes the current text into the controller's form state.
// Invalid text is dropped silently; validation proper happens at submit.
func (m *Model) saveFormField(fieldID string) {
	_ = m.ctrl.SetFormValue(fieldID, m.input.Value())
}

// loadFormField pulls a field's stored value back into the text input.
func (m *Model) loadFormField(fieldID string) {
	m.input.Reset()
	if v, ok := m.ctrl.FormValue(fieldID); ok {
		m.input.SetValue(intString(v))
	}
	m.input.Focus()
}

// resetInputFor prepares the input control for a freshly loaded step.
func (m *Model) resetInputFor(step *schema.StepDescriptor) {
	m.cursor = 0
	m.formIdx = 0
	m.pending = ""
	m.debounceGen++
	m.inlineErr = ""
	m.input.Reset()
	m.input.Blur()
	if step == nil {
		return
	}
	switch step.Kind {
	case schema.KindNumeric:
		m.input.Placeholder = "금액 입력 (원)"
		m.input.Focus()
	case schema.KindCompositeForm:
		m.input.Placeholder = "금액 입력"
		m.input.Focus()
	}
}

// userReason extracts the user-facing reason from a validation error; other
// errors are not shown inline.
func userReason(err error) string {
	if verr, ok := err.(*session.ValidationError); ok {
		return verr.Reason
	}
	return ""
}
