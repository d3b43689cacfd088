package wire

import (
	"encoding/json"
	"fmt"
	"io"
)

// EventType discriminates stream events.
type EventType string

// Stream event types, in the order a successful turn produces them.
const (
	EventMessageStart     EventType = "message-start"
	EventTextDelta        EventType = "text-delta"
	EventToolCallStart    EventType = "tool-call-start"
	EventToolCallDelta    EventType = "tool-call-delta"
	EventToolCallComplete EventType = "tool-call-complete"
	EventToolCallError    EventType = "tool-call-error"
	EventMessageComplete  EventType = "message-complete"
	EventTurnComplete     EventType = "turn-complete"

	// EventError is a turn-level failure emitted after streaming began.
	EventError EventType = "error"
)

// ErrorCode classifies turn-level failures into exactly two external
// categories.
type ErrorCode string

const (
	// CodeBudgetExceeded covers rate limiting, billing, credit, and quota
	// failure signatures.
	CodeBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"

	// CodeAPIError is the generic category; Message carries the underlying
	// failure text.
	CodeAPIError ErrorCode = "API_ERROR"
)

// Event is one element of the turn response stream. Field presence depends
// on Type; unset fields are omitted on the wire.
type Event struct {
	Type EventType `json:"type"`

	MessageID string `json:"messageId,omitempty"`
	PartID    string `json:"partId,omitempty"`
	ToolName  string `json:"toolName,omitempty"`

	// Text fragment for text-delta.
	Text string `json:"text,omitempty"`

	// Partial JSON fragment of the tool input for tool-call-delta.
	InputDelta string `json:"inputDelta,omitempty"`

	// Final input and output for tool-call-complete.
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`

	// Failure details for tool-call-error and error.
	ErrorText string    `json:"errorText,omitempty"`
	Code      ErrorCode `json:"code,omitempty"`
}

// WriteSSE writes one event in Server-Sent Events framing:
//
//	event: <type>
//	data: <json>
//
// Callers flush after each event to keep delivery incremental.
func WriteSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", ev.Type, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Type, err)
	}
	return nil
}
