// Package session holds the client-side conversation state and enforces the
// streaming protocol's ordering rules. Each tool invocation moves through a
// monotonic lifecycle and never regresses; violations are reported as typed
// errors instead of being silently absorbed.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

// TurnPhase is the coarse state of the conversation.
type TurnPhase int

const (
	// PhaseIdle means no turn is in flight.
	PhaseIdle TurnPhase = iota
	// PhaseSubmitted means a turn was sent but no event has arrived yet.
	PhaseSubmitted
	// PhaseStreaming means assistant events are arriving.
	PhaseStreaming
	// PhaseErrored means the last turn failed at the transport level.
	// Individual tool failures do not enter this phase; they stay local to
	// their part and the turn completes normally.
	PhaseErrored
)

func (p TurnPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhaseStreaming:
		return "streaming"
	case PhaseErrored:
		return "errored"
	default:
		return fmt.Sprintf("TurnPhase(%d)", int(p))
	}
}

var (
	// ErrUnknownPart is returned when an event references a part that was
	// never started.
	ErrUnknownPart = errors.New("event references unknown part")

	// ErrStateRegression is returned when an event would move a part
	// backwards in its lifecycle or past a terminal state.
	ErrStateRegression = errors.New("part state regression")

	// ErrPhase is returned when an event arrives in a phase that cannot
	// accept it.
	ErrPhase = errors.New("event not valid in current phase")
)

// Part is one in-progress or settled piece of the assistant message being
// streamed.
type Part struct {
	ID       string
	Type     string // wire.PartTypeText or wire.PartTypeTool
	ToolName string
	State    string // tool lifecycle state; empty for text parts

	text  strings.Builder
	draft strings.Builder // partial tool input JSON

	Input     json.RawMessage
	Output    json.RawMessage
	ErrorText string
}

// Text returns the accumulated text of a text part.
func (p *Part) Text() string { return p.text.String() }

// InputDraft returns the partial input JSON accumulated so far. It is only
// meaningful while State is input-streaming.
func (p *Part) InputDraft() string { return p.draft.String() }

func (p *Part) terminal() bool {
	return p.State == wire.ToolOutputAvailable || p.State == wire.ToolOutputError
}

// Session is the canonical client-side conversation. It is not safe for
// concurrent use; the TUI event loop owns it.
type Session struct {
	messages []wire.Message
	phase    TurnPhase

	draftID    string
	draftParts []*Part
	byID       map[string]*Part

	failure  *wire.TurnFailure
	revision uint64
}

// New creates an empty session.
func New() *Session {
	return &Session{byID: make(map[string]*Part)}
}

// Phase returns the current turn phase.
func (s *Session) Phase() TurnPhase { return s.phase }

// Revision increments on every accepted mutation. Renderers compare it to
// decide whether a redraw is needed.
func (s *Session) Revision() uint64 { return s.revision }

// Failure returns the turn-level failure when the phase is errored.
func (s *Session) Failure() *wire.TurnFailure { return s.failure }

// History returns the committed conversation, which the client resends in
// full with every turn request.
func (s *Session) History() []wire.Message { return s.messages }

// StreamingParts returns the parts of the assistant message currently being
// streamed, in arrival order. Empty outside a streaming turn.
func (s *Session) StreamingParts() []*Part { return s.draftParts }

// BeginTurn commits the user message and marks a turn as submitted. It is
// only valid when no turn is in flight.
func (s *Session) BeginTurn(user wire.Message) error {
	if s.phase == PhaseSubmitted || s.phase == PhaseStreaming {
		return fmt.Errorf("%w: turn already in flight (%s)", ErrPhase, s.phase)
	}
	s.messages = append(s.messages, user)
	s.phase = PhaseSubmitted
	s.failure = nil
	s.draftID = ""
	s.draftParts = nil
	s.byID = make(map[string]*Part)
	s.revision++
	return nil
}

// Fail records a turn-level failure (transport breakdown or a pre-stream
// rejection) and moves to the errored phase. Whatever streamed before the
// failure is committed so settled cards survive.
func (s *Session) Fail(code wire.ErrorCode, message string) {
	s.commitDraft()
	s.failure = &wire.TurnFailure{Error: code, Message: message}
	s.phase = PhaseErrored
	s.revision++
}

// Apply advances the session by one stream event. A returned error means
// the event violated the protocol; the session state is unchanged.
func (s *Session) Apply(ev wire.Event) error {
	switch ev.Type {
	case wire.EventMessageStart:
		if s.phase != PhaseSubmitted {
			return fmt.Errorf("%w: message-start in phase %s", ErrPhase, s.phase)
		}
		s.draftID = ev.MessageID
		s.phase = PhaseStreaming

	case wire.EventTextDelta:
		if err := s.requireStreaming(ev.Type); err != nil {
			return err
		}
		p, ok := s.byID[ev.PartID]
		if !ok {
			p = &Part{ID: ev.PartID, Type: wire.PartTypeText}
			s.addPart(p)
		}
		if p.Type != wire.PartTypeText {
			return fmt.Errorf("%w: text-delta for tool part %s", ErrStateRegression, ev.PartID)
		}
		p.text.WriteString(ev.Text)

	case wire.EventToolCallStart:
		if err := s.requireStreaming(ev.Type); err != nil {
			return err
		}
		if _, exists := s.byID[ev.PartID]; exists {
			return fmt.Errorf("%w: duplicate start for part %s", ErrStateRegression, ev.PartID)
		}
		s.addPart(&Part{
			ID:       ev.PartID,
			Type:     wire.PartTypeTool,
			ToolName: ev.ToolName,
			State:    wire.ToolInputStreaming,
		})

	case wire.EventToolCallDelta:
		p, err := s.toolPart(ev)
		if err != nil {
			return err
		}
		if p.State != wire.ToolInputStreaming {
			return fmt.Errorf("%w: delta for part %s in state %s", ErrStateRegression, p.ID, p.State)
		}
		p.draft.WriteString(ev.InputDelta)

	case wire.EventToolCallComplete:
		p, err := s.toolPart(ev)
		if err != nil {
			return err
		}
		// input-available may be skipped entirely when the terminal event
		// arrives in the same burst as the input.
		if p.terminal() {
			return fmt.Errorf("%w: complete for settled part %s", ErrStateRegression, p.ID)
		}
		p.State = wire.ToolOutputAvailable
		p.Input = ev.Input
		p.Output = ev.Output

	case wire.EventToolCallError:
		p, err := s.toolPart(ev)
		if err != nil {
			return err
		}
		if p.terminal() {
			return fmt.Errorf("%w: error for settled part %s", ErrStateRegression, p.ID)
		}
		p.State = wire.ToolOutputError
		p.Input = ev.Input
		p.ErrorText = ev.ErrorText

	case wire.EventMessageComplete:
		if err := s.requireStreaming(ev.Type); err != nil {
			return err
		}
		s.commitDraft()

	case wire.EventTurnComplete:
		// Tolerated from streaming (normal) and from idle (when
		// message-complete already committed).
		if s.phase == PhaseStreaming {
			s.commitDraft()
		}
		s.phase = PhaseIdle

	case wire.EventError:
		s.Fail(ev.Code, ev.ErrorText)
		return nil

	default:
		return fmt.Errorf("%w: unrecognized event type %q", ErrPhase, ev.Type)
	}

	s.revision++
	return nil
}

func (s *Session) requireStreaming(t wire.EventType) error {
	if s.phase != PhaseStreaming {
		return fmt.Errorf("%w: %s in phase %s", ErrPhase, t, s.phase)
	}
	return nil
}

func (s *Session) toolPart(ev wire.Event) (*Part, error) {
	if err := s.requireStreaming(ev.Type); err != nil {
		return nil, err
	}
	p, ok := s.byID[ev.PartID]
	if !ok {
		return nil, fmt.Errorf("%w: %s for part %s", ErrUnknownPart, ev.Type, ev.PartID)
	}
	if p.Type != wire.PartTypeTool {
		return nil, fmt.Errorf("%w: %s for text part %s", ErrStateRegression, ev.Type, ev.PartID)
	}
	return p, nil
}

func (s *Session) addPart(p *Part) {
	s.draftParts = append(s.draftParts, p)
	s.byID[p.ID] = p
}

// commitDraft converts the streamed parts into a committed assistant message.
// A tool part still mid-stream when the message ends is settled as an error
// so history never carries a non-terminal state.
func (s *Session) commitDraft() {
	if s.draftID == "" && len(s.draftParts) == 0 {
		return
	}

	msg := wire.Message{ID: s.draftID, Role: wire.RoleAssistant}
	for _, p := range s.draftParts {
		switch p.Type {
		case wire.PartTypeText:
			if t := p.Text(); t != "" {
				msg.Parts = append(msg.Parts, wire.Part{Type: wire.PartTypeText, Text: t})
			}
		case wire.PartTypeTool:
			wp := wire.Part{
				Type:     wire.PartTypeTool,
				ID:       p.ID,
				ToolName: p.ToolName,
				State:    p.State,
				Input:    p.Input,
				Output:   p.Output,
			}
			if !p.terminal() {
				wp.State = wire.ToolOutputError
				wp.ErrorText = "stream ended before the invocation completed"
			} else {
				wp.ErrorText = p.ErrorText
			}
			msg.Parts = append(msg.Parts, wp)
		}
	}
	if len(msg.Parts) > 0 {
		s.messages = append(s.messages, msg)
	}

	s.draftID = ""
	s.draftParts = nil
	s.byID = make(map[string]*Part)
}
