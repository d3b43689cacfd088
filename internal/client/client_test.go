package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

func TestTurnStreamsEvents(t *testing.T) {
	t.Parallel()

	served := []wire.Event{
		{Type: wire.EventMessageStart, MessageID: "m1"},
		{Type: wire.EventToolCallStart, MessageID: "m1", PartID: "t1", ToolName: "pie_chart"},
		{Type: wire.EventMessageComplete, MessageID: "m1"},
		{Type: wire.EventTurnComplete, MessageID: "m1"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/turn", r.URL.Path)

		var req wire.TurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, ev := range served {
			require.NoError(t, wire.WriteSSE(w, ev))
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	var got []wire.Event
	for ev, err := range c.Turn(context.Background(), wire.TurnRequest{Messages: []wire.Message{{
		ID: "u1", Role: wire.RoleUser,
		Parts: []wire.Part{{Type: wire.PartTypeText, Text: "hi"}},
	}}}) {
		require.NoError(t, err)
		got = append(got, ev)
	}

	require.Len(t, got, len(served))
	for i := range served {
		assert.Equal(t, served[i].Type, got[i].Type)
	}
}

func TestTurnRejectionDecodesFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"BUDGET_EXCEEDED","message":"out of credits"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	var gotErr error
	for _, err := range c.Turn(context.Background(), wire.TurnRequest{Messages: []wire.Message{{ID: "u1", Role: wire.RoleUser}}}) {
		gotErr = err
	}

	var rejected *TurnFailureError
	require.ErrorAs(t, gotErr, &rejected)
	assert.Equal(t, http.StatusTooManyRequests, rejected.StatusCode)
	assert.Equal(t, wire.CodeBudgetExceeded, rejected.Code)
	assert.Equal(t, "out of credits", rejected.Message)
}

func TestTurnRejectionWithoutBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	var gotErr error
	for _, err := range c.Turn(context.Background(), wire.TurnRequest{Messages: []wire.Message{{ID: "u1", Role: wire.RoleUser}}}) {
		gotErr = err
	}

	var rejected *TurnFailureError
	require.ErrorAs(t, gotErr, &rejected)
	assert.Equal(t, wire.CodeAPIError, rejected.Code)
	assert.Contains(t, rejected.Message, "502")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL)
	assert.NoError(t, c.Health(context.Background()))

	bad := New(srv.URL + "/missing")
	assert.Error(t, bad.Health(context.Background()))
}
