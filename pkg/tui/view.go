package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acrolabs/counsel/pkg/format"
	"github.com/acrolabs/counsel/pkg/schema"
	"github.com/acrolabs/counsel/pkg/session"
	"github.com/acrolabs/counsel/pkg/visibility"
)

func intString(v int64) string { return strconv.FormatInt(v, 10) }

// chromeHeight is the number of rows reserved around the transcript viewport
// for the header, the input control and the key bar.
func (m *Model) chromeHeight() int {
	return 2 + m.controlHeight() + 1
}

// controlHeight reserves rows for the current input control.
func (m *Model) controlHeight() int {
	step := m.ctrl.CurrentStep()
	if m.ctrl.Phase() != session.PhaseAwaitingAnswer || step == nil {
		return 2
	}
	switch step.Kind {
	case schema.KindSingleChoice, schema.KindBoolean, schema.KindMultiChoice:
		return len(step.Options) + 2
	case schema.KindCompositeForm:
		fields := visibility.VisibleFields(step.Fields, m.ctrl.Answers())
		return len(fields) + 3
	default:
		return 3
	}
}

// refreshTranscript re-renders the transcript into the viewport and scrolls
// to the newest message.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	var b strings.Builder
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}
	for _, msg := range m.ctrl.Transcript() {
		switch {
		case msg.Card != nil:
			b.WriteString(cardStyle.Render(msg.Card.Plain(width - 8)))
		case msg.Origin == session.OriginParticipant:
			b.WriteString(participantPrefix.Render("나 › "))
			b.WriteString(participantStyle.Render(msg.Content))
		default:
			b.WriteString(assistantStyle.Render(renderMarkdownWidth(msg.Content, width)))
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
	m.viewport.Height = m.height - m.chromeHeight()
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
}

// View assembles header, transcript, input control and key bar.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.controlView())
	b.WriteString("\n")
	b.WriteString(m.keyBarView())
	return b.String()
}

func (m *Model) headerView() string {
	title := headerStyle.Render("아크로 AI 상담사")
	step := m.ctrl.CurrentStep()
	if step != nil && step.TotalSteps > 0 && m.ctrl.Phase() == session.PhaseAwaitingAnswer {
		return title + progressStyle.Render(fmt.Sprintf("%d / %d", step.Progress, step.TotalSteps))
	}
	return title
}

func (m *Model) controlView() string {
	switch m.ctrl.Phase() {
	case session.PhaseIdle:
		return keyBarStyle.Render(keyStyle.Render("enter") + keyDescStyle.Render(" 상담 시작"))

	case session.PhaseStarting, session.PhaseSubmitting:
		return keyBarStyle.Render(m.spinner.View() + " ")

	case session.PhaseAwaitingStep:
		return keyBarStyle.Render(m.spinner.View() + " " + keyDescStyle.Render("질문을 불러오는 중... (r: 다시 시도)"))

	case session.PhaseCompleting:
		if m.ctrl.Result() != nil {
			return ""
		}
		if m.retryCompute {
			return keyBarStyle.Render(errorStyle.Render("계산 실패") + keyDescStyle.Render("  r: 다시 시도"))
		}
		return keyBarStyle.Render(m.spinner.View() + " " + captionStyle.Render(session.ComputeCaptions[m.captionIdx]))

	case session.PhaseAwaitingAnswer:
		return m.answerControlView()

	case session.PhaseFreeChat:
		return keyBarStyle.Render(m.input.View())
	}
	return ""
}

func (m *Model) answerControlView() string {
	step := m.ctrl.CurrentStep()
	if step == nil {
		return ""
	}

	var b strings.Builder
	switch step.Kind {
	case schema.KindSingleChoice, schema.KindBoolean, schema.KindMultiChoice:
		for i, o := range step.Options {
			line := "  "
			style := optionNormal
			if i == m.cursor {
				line = GlyphCursor + " "
				style = optionCurrent
			}
			if step.Kind == schema.KindMultiChoice {
				if m.ctrl.Selected(o.Value) {
					line += GlyphChecked + " "
					if i != m.cursor {
						style = optionSelected
					}
				} else {
					line += GlyphUnchecked + " "
				}
			}
			if m.pending == o.Value {
				style = optionSelected
			}
			b.WriteString(keyBarStyle.Render(style.Render(line + o.Label)))
			b.WriteString("\n")
		}

	case schema.KindNumeric:
		b.WriteString(keyBarStyle.Render(m.input.View()))
		b.WriteString("\n")
		if strings.ContainsAny(m.input.Value(), "0123456789") {
			preview := format.DisplayWon(format.NormalizeNumeric(m.input.Value()))
			b.WriteString(keyBarStyle.Render(previewStyle.Render(preview)))
			b.WriteString("\n")
		}

	case schema.KindCompositeForm:
		b.WriteString(m.formControlView(step))
	}

	if m.inlineErr != "" {
		b.WriteString(keyBarStyle.Render(errorStyle.Render(m.inlineErr)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) formControlView(step *schema.StepDescriptor) string {
	fields := m.ctrl.VisibleFields()
	starts := visibility.GroupStarts(fields)

	var b strings.Builder
	for i, f := range fields {
		if starts[i] {
			b.WriteString(keyBarStyle.Render(groupHeaderStyle.Render(f.Group)))
			b.WriteString("\n")
		}
		label := f.Label
		if f.Required {
			label += " *"
		}
		line := "  " + fieldLabelStyle.Render(label) + "  "
		if i == m.formIdx {
			line = GlyphCursor + " " + fieldLabelStyle.Render(label) + "  " + m.input.View()
		} else if v, ok := m.ctrl.FormValue(f.ID); ok {
			line += previewStyle.Render(format.DisplayWon(v))
		} else {
			line += helpStyle.Render("미입력")
		}
		b.WriteString(keyBarStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) keyBarView() string {
	pairs := [][2]string{}
	switch m.ctrl.Phase() {
	case session.PhaseAwaitingAnswer:
		step := m.ctrl.CurrentStep()
		if step != nil {
			switch step.Kind {
			case schema.KindMultiChoice:
				pairs = append(pairs, [2]string{"space", "선택"}, [2]string{"enter", "확인"})
			case schema.KindCompositeForm:
				pairs = append(pairs, [2]string{"tab", "다음 항목"}, [2]string{"ctrl+s", "제출"})
			case schema.KindNumeric:
				pairs = append(pairs, [2]string{"enter", "입력"})
			default:
				pairs = append(pairs, [2]string{"enter", "선택"})
			}
		}
	case session.PhaseFreeChat:
		pairs = append(pairs, [2]string{"enter", "질문"})
	}
	pairs = append(pairs, [2]string{"ctrl+r", "처음부터"}, [2]string{"ctrl+c", "종료"})

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, keyStyle.Render(p[0])+keyDescStyle.Render(" "+p[1]))
	}
	return keyBarStyle.Render(strings.Join(parts, "  "))
}
