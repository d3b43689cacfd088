package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

func userMessage(text string) wire.Message {
	return wire.Message{
		ID:    "u1",
		Role:  wire.RoleUser,
		Parts: []wire.Part{{Type: wire.PartTypeText, Text: text}},
	}
}

func beginStreaming(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.BeginTurn(userMessage("analyze this")))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventMessageStart, MessageID: "m1"}))
	require.Equal(t, PhaseStreaming, s.Phase())
}

func TestBeginTurn(t *testing.T) {
	t.Parallel()

	s := New()
	assert.Equal(t, PhaseIdle, s.Phase())

	require.NoError(t, s.BeginTurn(userMessage("hi")))
	assert.Equal(t, PhaseSubmitted, s.Phase())
	assert.Len(t, s.History(), 1)

	err := s.BeginTurn(userMessage("again"))
	assert.ErrorIs(t, err, ErrPhase)
}

func TestToolLifecycle(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, MessageID: "m1", PartID: "t1", ToolName: "sentiment_analysis"}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallDelta, MessageID: "m1", PartID: "t1", InputDelta: `{"text":"good`}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallDelta, MessageID: "m1", PartID: "t1", InputDelta: `"}`}))

	parts := s.StreamingParts()
	require.Len(t, parts, 1)
	assert.Equal(t, wire.ToolInputStreaming, parts[0].State)
	assert.Equal(t, `{"text":"good"}`, parts[0].InputDraft())

	output := json.RawMessage(`{"text":"good","overallSentiment":"mixed","score":0.1,"breakdown":[{"aspect":"tone","sentiment":"positive","text":"good"}]}`)
	require.NoError(t, s.Apply(wire.Event{
		Type: wire.EventToolCallComplete, MessageID: "m1", PartID: "t1",
		ToolName: "sentiment_analysis",
		Input:    json.RawMessage(`{"text":"good"}`),
		Output:   output,
	}))
	assert.Equal(t, wire.ToolOutputAvailable, parts[0].State)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventMessageComplete, MessageID: "m1"}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventTurnComplete, MessageID: "m1"}))
	assert.Equal(t, PhaseIdle, s.Phase())

	history := s.History()
	require.Len(t, history, 2)
	assistant := history[1]
	assert.Equal(t, wire.RoleAssistant, assistant.Role)
	require.Len(t, assistant.Parts, 1)
	assert.Equal(t, wire.ToolOutputAvailable, assistant.Parts[0].State)
	assert.JSONEq(t, string(output), string(assistant.Parts[0].Output))
}

func TestStateRegressionRejected(t *testing.T) {
	t.Parallel()

	t.Run("delta after complete", func(t *testing.T) {
		t.Parallel()
		s := New()
		beginStreaming(t, s)
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallComplete, PartID: "t1", Output: json.RawMessage(`{}`)}))

		rev := s.Revision()
		err := s.Apply(wire.Event{Type: wire.EventToolCallDelta, PartID: "t1", InputDelta: "{"})
		assert.ErrorIs(t, err, ErrStateRegression)
		assert.Equal(t, rev, s.Revision(), "rejected event must not mutate state")
	})

	t.Run("complete after error", func(t *testing.T) {
		t.Parallel()
		s := New()
		beginStreaming(t, s)
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallError, PartID: "t1", ErrorText: "bad input"}))

		err := s.Apply(wire.Event{Type: wire.EventToolCallComplete, PartID: "t1", Output: json.RawMessage(`{}`)})
		assert.ErrorIs(t, err, ErrStateRegression)
	})

	t.Run("duplicate start", func(t *testing.T) {
		t.Parallel()
		s := New()
		beginStreaming(t, s)
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
		err := s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"})
		assert.ErrorIs(t, err, ErrStateRegression)
	})
}

func TestUnknownPartRejected(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	err := s.Apply(wire.Event{Type: wire.EventToolCallDelta, PartID: "ghost", InputDelta: "{"})
	assert.ErrorIs(t, err, ErrUnknownPart)

	err = s.Apply(wire.Event{Type: wire.EventToolCallComplete, PartID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownPart)
}

func TestBurstCompleteWithoutDeltas(t *testing.T) {
	t.Parallel()

	// A fast invocation may settle in the same burst that started it,
	// with no delta events in between.
	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "pie_chart"}))
	require.NoError(t, s.Apply(wire.Event{
		Type: wire.EventToolCallComplete, PartID: "t1",
		Output: json.RawMessage(`{"title":"T","data":[]}`),
	}))
	assert.Equal(t, wire.ToolOutputAvailable, s.StreamingParts()[0].State)
}

func TestMultiToolTurn(t *testing.T) {
	t.Parallel()

	// CSV analysis turns typically settle several invocations: a table,
	// statistics, and a chart.
	s := New()
	beginStreaming(t, s)

	for i, name := range []string{"data_table", "statistics_summary", "bar_chart"} {
		id := string(rune('a' + i))
		require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: id, ToolName: name}))
		require.NoError(t, s.Apply(wire.Event{
			Type: wire.EventToolCallComplete, PartID: id, ToolName: name,
			Output: json.RawMessage(`{"title":"T"}`),
		}))
	}
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventMessageComplete}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventTurnComplete}))

	assistant := s.History()[1]
	require.Len(t, assistant.Parts, 3)
	assert.Equal(t, "data_table", assistant.Parts[0].ToolName)
	assert.Equal(t, "statistics_summary", assistant.Parts[1].ToolName)
	assert.Equal(t, "bar_chart", assistant.Parts[2].ToolName)
}

func TestPartErrorStaysLocal(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallError, PartID: "t1", ErrorText: "invalid input"}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t2", ToolName: "pie_chart"}))
	require.NoError(t, s.Apply(wire.Event{
		Type: wire.EventToolCallComplete, PartID: "t2",
		Output: json.RawMessage(`{"title":"T","data":[]}`),
	}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventMessageComplete}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventTurnComplete}))

	// A failed invocation never moves the conversation to errored.
	assert.Equal(t, PhaseIdle, s.Phase())

	assistant := s.History()[1]
	require.Len(t, assistant.Parts, 2)
	assert.Equal(t, wire.ToolOutputError, assistant.Parts[0].State)
	assert.Equal(t, wire.ToolOutputAvailable, assistant.Parts[1].State)
}

func TestTurnLevelError(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
	require.NoError(t, s.Apply(wire.Event{
		Type: wire.EventToolCallComplete, PartID: "t1",
		Output: json.RawMessage(`{"title":"T","data":[]}`),
	}))
	require.NoError(t, s.Apply(wire.Event{
		Type: wire.EventError, Code: wire.CodeBudgetExceeded, ErrorText: "rate limited",
	}))

	assert.Equal(t, PhaseErrored, s.Phase())
	require.NotNil(t, s.Failure())
	assert.Equal(t, wire.CodeBudgetExceeded, s.Failure().Error)

	// Settled work survives the failure.
	assistant := s.History()[1]
	require.Len(t, assistant.Parts, 1)
	assert.Equal(t, wire.ToolOutputAvailable, assistant.Parts[0].State)

	// A new turn can begin from errored.
	assert.NoError(t, s.BeginTurn(userMessage("retry")))
}

func TestCommitSettlesInFlightParts(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventToolCallStart, PartID: "t1", ToolName: "bar_chart"}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventMessageComplete}))

	// History never carries a non-terminal tool state.
	assistant := s.History()[1]
	require.Len(t, assistant.Parts, 1)
	assert.Equal(t, wire.ToolOutputError, assistant.Parts[0].State)
	assert.NotEmpty(t, assistant.Parts[0].ErrorText)
}

func TestTextDeltaAccumulates(t *testing.T) {
	t.Parallel()

	s := New()
	beginStreaming(t, s)

	require.NoError(t, s.Apply(wire.Event{Type: wire.EventTextDelta, PartID: "p1", Text: "Hello, "}))
	require.NoError(t, s.Apply(wire.Event{Type: wire.EventTextDelta, PartID: "p1", Text: "world"}))
	assert.Equal(t, "Hello, world", s.StreamingParts()[0].Text())
}

func TestRevisionAdvancesOnMutation(t *testing.T) {
	t.Parallel()

	s := New()
	r0 := s.Revision()
	require.NoError(t, s.BeginTurn(userMessage("hi")))
	assert.Greater(t, s.Revision(), r0)
}
