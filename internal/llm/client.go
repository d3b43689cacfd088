// Package llm wraps the language model as an opaque streaming capability:
// given a system prompt, conversation history, and a tool catalog, produce
// an incremental sequence of text fragments and tool invocations.
//
// The orchestrator consumes the neutral event model defined here; only the
// Anthropic implementation in anthropic.go knows the provider SDK.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

// BlockKind discriminates content blocks of a model message.
type BlockKind int

const (
	// BlockText is plain assistant text.
	BlockText BlockKind = iota
	// BlockToolUse is a tool invocation with its final input.
	BlockToolUse
)

// Block is one content block of an assistant message.
type Block struct {
	Kind     BlockKind
	Text     string
	ToolID   string
	ToolName string
	Input    json.RawMessage
}

// ToolResult is the outcome of one dispatched invocation, fed back to the
// model on the next step of the same turn.
type ToolResult struct {
	ToolID  string
	Content json.RawMessage
	IsError bool
}

// Step is one completed tool round trip within a turn: the assistant blocks
// the model produced and the results the dispatcher returned.
type Step struct {
	Assistant []Block
	Results   []ToolResult
}

// ToolDefinition is one catalog entry in the shape the model consumes.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Request describes one model step.
type Request struct {
	System  string
	History []wire.Message
	Steps   []Step
	Tools   []ToolDefinition
}

// EventKind discriminates stream events.
type EventKind int

const (
	// EventTextDelta carries a text fragment.
	EventTextDelta EventKind = iota
	// EventToolUseStart opens a tool invocation block.
	EventToolUseStart
	// EventToolInputDelta carries a partial-JSON fragment of a tool input.
	EventToolInputDelta
	// EventBlockStop closes a content block.
	EventBlockStop
	// EventStepDone is the final event of a step; Step is populated.
	EventStepDone
)

// StreamEvent is one element of a model step's event stream. Index
// identifies the content block the event belongs to.
type StreamEvent struct {
	Kind        EventKind
	Index       int
	Text        string
	ToolID      string
	ToolName    string
	PartialJSON string
	Step        *StepResult
}

// StepResult is the accumulated outcome of one model step.
type StepResult struct {
	Blocks     []Block
	StopReason string
}

// Stop reasons surfaced in StepResult.
const (
	StopToolUse = "tool_use"
	StopEndTurn = "end_turn"
)

// Client is the model capability. Stream runs one step and yields events in
// arrival order, ending with EventStepDone on success. Implementations
// surface provider failures as *ProviderError where a status code exists.
type Client interface {
	Stream(ctx context.Context, req Request) iter.Seq2[StreamEvent, error]
}

// ProviderError is a model-call failure with the provider's HTTP status
// attached when known (0 otherwise).
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model call failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "model call failed: " + e.Message
}
