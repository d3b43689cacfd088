package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardflow-sh/cardflow/internal/catalog"
	"github.com/cardflow-sh/cardflow/internal/dispatch"
	"github.com/cardflow-sh/cardflow/internal/llm"
	"github.com/cardflow-sh/cardflow/internal/log"
	"github.com/cardflow-sh/cardflow/internal/turn"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// scriptedModel replays one scripted outcome per model step.
type scriptedModel struct {
	events []llm.StreamEvent
	err    error
}

func (f *scriptedModel) Stream(context.Context, llm.Request) iter.Seq2[llm.StreamEvent, error] {
	return func(yield func(llm.StreamEvent, error) bool) {
		for _, ev := range f.events {
			if !yield(ev, nil) {
				return
			}
		}
		if f.err != nil {
			yield(llm.StreamEvent{}, f.err)
		}
	}
}

func newTestServer(t *testing.T, model llm.Client) *httptest.Server {
	t.Helper()
	cat, err := catalog.New()
	require.NoError(t, err)
	registry, err := dispatch.NewRegistry(cat, log.NewNop())
	require.NoError(t, err)
	runner := turn.NewRunner(model, registry, log.NewNop(), turn.Options{
		MaxSteps: 3,
		Timeout:  5 * time.Second,
	})
	srv := httptest.NewServer(NewHandler(runner, log.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postTurn(t *testing.T, srv *httptest.Server) *http.Response {
	t.Helper()
	body, err := json.Marshal(wire.TurnRequest{Messages: []wire.Message{{
		ID:    "u1",
		Role:  wire.RoleUser,
		Parts: []wire.Part{{Type: wire.PartTypeText, Text: "chart please"}},
	}}})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/turn", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestTurnEndpointStreamsSSE(t *testing.T) {
	t.Parallel()

	input := `{"title":"T","data":[{"label":"A","value":1}]}`
	model := &scriptedModel{events: []llm.StreamEvent{
		{Kind: llm.EventToolUseStart, Index: 0, ToolID: "t1", ToolName: "bar_chart"},
		{Kind: llm.EventToolInputDelta, Index: 0, PartialJSON: input},
		{Kind: llm.EventStepDone, Step: &llm.StepResult{
			StopReason: llm.StopEndTurn,
			Blocks: []llm.Block{{
				Kind: llm.BlockToolUse, ToolID: "t1", ToolName: "bar_chart",
				Input: json.RawMessage(input),
			}},
		}},
	}}

	resp := postTurn(t, newTestServer(t, model))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	dec := wire.NewDecoder(resp.Body)
	var types []wire.EventType
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		types = append(types, ev.Type)
	}

	assert.Equal(t, []wire.EventType{
		wire.EventMessageStart,
		wire.EventToolCallStart,
		wire.EventToolCallDelta,
		wire.EventToolCallComplete,
		wire.EventMessageComplete,
		wire.EventTurnComplete,
	}, types)
}

func TestTurnEndpointBudgetFailureBeforeStream(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: &llm.ProviderError{StatusCode: 429, Message: "rate limited"}}

	resp := postTurn(t, newTestServer(t, model))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var failure wire.TurnFailure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, wire.CodeBudgetExceeded, failure.Error)
	assert.NotEmpty(t, failure.Message)
}

func TestTurnEndpointGenericFailureBeforeStream(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: &llm.ProviderError{StatusCode: 500, Message: "overloaded"}}

	resp := postTurn(t, newTestServer(t, model))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var failure wire.TurnFailure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failure))
	assert.Equal(t, wire.CodeAPIError, failure.Error)
}

func TestTurnEndpointRejectsEmptyRequest(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedModel{})

	resp, err := http.Post(srv.URL+"/api/turn", "application/json", bytes.NewReader([]byte(`{"messages":[]}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTurnEndpointRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedModel{})

	resp, err := http.Post(srv.URL+"/api/turn", "application/json", bytes.NewReader([]byte(`{"messages"`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &scriptedModel{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
