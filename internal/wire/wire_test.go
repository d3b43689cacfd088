package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSSEFraming(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteSSE(&buf, Event{Type: EventTextDelta, MessageID: "m1", PartID: "p1", Text: "hi"})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: text-delta\ndata: "))
	assert.True(t, strings.HasSuffix(out, "\n\n"))

	// Data line must be the JSON encoding of the event.
	dataLine := strings.TrimSuffix(strings.SplitN(out, "data: ", 2)[1], "\n\n")
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(dataLine), &ev))
	assert.Equal(t, EventTextDelta, ev.Type)
	assert.Equal(t, "hi", ev.Text)
}

func TestDecoderRoundTrip(t *testing.T) {
	t.Parallel()

	events := []Event{
		{Type: EventMessageStart, MessageID: "m1"},
		{Type: EventToolCallStart, MessageID: "m1", PartID: "t1", ToolName: "bar_chart"},
		{Type: EventToolCallDelta, MessageID: "m1", PartID: "t1", InputDelta: `{"title":`},
		{Type: EventToolCallComplete, MessageID: "m1", PartID: "t1", ToolName: "bar_chart",
			Input:  json.RawMessage(`{"title":"T"}`),
			Output: json.RawMessage(`{"title":"T","data":[]}`)},
		{Type: EventMessageComplete, MessageID: "m1"},
		{Type: EventTurnComplete, MessageID: "m1"},
	}

	var buf bytes.Buffer
	for _, ev := range events {
		require.NoError(t, WriteSSE(&buf, ev))
	}

	dec := NewDecoder(&buf)
	for i, want := range events {
		got, err := dec.Next()
		require.NoError(t, err, "event %d", i)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.PartID, got.PartID)
		assert.Equal(t, want.ToolName, got.ToolName)
		assert.Equal(t, want.InputDelta, got.InputDelta)
	}

	_, err := dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderToleratesComments(t *testing.T) {
	t.Parallel()

	stream := ": keep-alive\n\nevent: turn-complete\ndata: {\"type\":\"turn-complete\",\"messageId\":\"m\"}\n\n"
	dec := NewDecoder(strings.NewReader(stream))

	ev, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, EventTurnComplete, ev.Type)
}

func TestDecoderRejectsMismatchedType(t *testing.T) {
	t.Parallel()

	stream := "event: text-delta\ndata: {\"type\":\"tool-call-start\"}\n\n"
	dec := NewDecoder(strings.NewReader(stream))

	_, err := dec.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestDecoderRejectsDataWithoutEvent(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(strings.NewReader("data: {\"type\":\"error\"}\n\n"))
	_, err := dec.Next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestEventOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Event{Type: EventMessageStart, MessageID: "m1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message-start","messageId":"m1"}`, string(data))
}
