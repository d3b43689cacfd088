// Package wire defines the protocol shared by the turn server and the chat
// client: the conversation representation sent with a turn request and the
// incremental event stream sent back, framed as Server-Sent Events.
package wire

import "encoding/json"

// Message roles. The protocol has no system role; the behavioral policy
// lives server-side.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part type tags.
const (
	PartTypeText = "text"
	PartTypeFile = "file"
	PartTypeTool = "tool-invocation"
)

// Tool invocation states carried in history parts and session state.
const (
	ToolInputStreaming  = "input-streaming"
	ToolInputAvailable  = "input-available"
	ToolOutputAvailable = "output-available"
	ToolOutputError     = "output-error"
)

// TurnRequest carries the full conversation history. The client owns the
// canonical copy and resends it every turn; the server keeps nothing.
type TurnRequest struct {
	Messages []Message `json:"messages"`
}

// Message is one conversation entry.
type Message struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a tagged variant: text, file, or tool invocation.
// Tool parts only appear in history in a terminal state.
type Part struct {
	Type string `json:"type"`

	// ID is set on tool invocation parts; it pairs a replayed tool call
	// with its result when the history is resent to the model.
	ID string `json:"id,omitempty"`

	// Text part
	Text string `json:"text,omitempty"`

	// File part (user messages only). Data holds the base64 content for
	// images and PDFs; text-like files travel as a text part instead.
	MediaType string `json:"mediaType,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Data      string `json:"data,omitempty"`

	// Tool invocation part
	ToolName  string          `json:"toolName,omitempty"`
	State     string          `json:"state,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	ErrorText string          `json:"errorText,omitempty"`
}

// TurnFailure is the JSON body returned when a turn fails before any event
// is emitted. The HTTP status distinguishes the categories: 429 for budget
// exhaustion, 502 otherwise.
type TurnFailure struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}
