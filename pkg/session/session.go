// Package session holds the interview session state machine. The Controller
// is a pure state core: it owns the transcript, the phase, the recorded
// answers and the in-progress input state, but performs no I/O itself.
// Callers (the TUI, the MCP server, tests) run the service calls and feed the
// outcomes back through the Finish methods.
//
// Every service call is identified by a Token carrying a per-kind generation
// counter. A Finish call whose token generation no longer matches the
// controller's counter is stale (a Reset or a newer request happened in the
// meantime) and is discarded without touching any state.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/acrolabs/counsel/pkg/chat"
)

// Origin identifies who authored a transcript message.
type Origin string

const (
	OriginAssistant   Origin = "assistant"
	OriginParticipant Origin = "participant"
)

// Message is one transcript entry. Content is markdown; Card is set only on
// the single result-summary message.
type Message struct {
	ID      uuid.UUID        `json:"id"`
	Origin  Origin           `json:"origin"`
	Content string           `json:"content,omitempty"`
	Card    *chat.ResultCard `json:"card,omitempty"`
	At      time.Time        `json:"at"`
}

// Phase enumerates the controller states. Submitting and Starting are
// in-flight states: exactly one service call of the matching kind is pending.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseStarting       Phase = "starting"
	PhaseAwaitingStep   Phase = "awaiting_step"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseSubmitting     Phase = "submitting"
	PhaseCompleting     Phase = "completing"
	PhaseFreeChat       Phase = "free_chat"
)

// CallKind names the four service call kinds, each with its own generation
// counter.
type CallKind string

const (
	CallStart    CallKind = "start"
	CallLoadStep CallKind = "load_step"
	CallSubmit   CallKind = "submit"
	CallCompute  CallKind = "compute"
)

// Token ties an in-flight service call to the controller generation that
// issued it.
type Token struct {
	Kind CallKind
	Gen  uint64
}

func newMessage(origin Origin, content string) Message {
	return Message{
		ID:      uuid.New(),
		Origin:  origin,
		Content: content,
		At:      time.Now(),
	}
}
