// Package client is the HTTP side of the turn protocol: it posts a turn
// request and yields the decoded event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

// TurnFailureError is a turn rejected before any event streamed. Code and
// Message come from the server's JSON failure body.
type TurnFailureError struct {
	StatusCode int
	Code       wire.ErrorCode
	Message    string
}

func (e *TurnFailureError) Error() string {
	return fmt.Sprintf("turn rejected (HTTP %d, %s): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to a cardflow server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://127.0.0.1:3400".
// Streaming responses last as long as a turn, so the HTTP client carries no
// overall timeout; cancellation comes from the context.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Turn posts the conversation and yields the event stream. The sequence ends
// cleanly after the last event; transport and protocol failures surface
// through the error slot.
func (c *Client) Turn(ctx context.Context, req wire.TurnRequest) iter.Seq2[wire.Event, error] {
	return func(yield func(wire.Event, error) bool) {
		body, err := json.Marshal(req)
		if err != nil {
			yield(wire.Event{}, fmt.Errorf("encoding turn request: %w", err))
			return
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/turn", bytes.NewReader(body))
		if err != nil {
			yield(wire.Event{}, fmt.Errorf("building turn request: %w", err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			yield(wire.Event{}, fmt.Errorf("sending turn request: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield(wire.Event{}, decodeFailure(resp))
			return
		}

		dec := wire.NewDecoder(resp.Body)
		for {
			ev, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(wire.Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func decodeFailure(resp *http.Response) error {
	var failure wire.TurnFailure
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&failure); err != nil || failure.Error == "" {
		return &TurnFailureError{
			StatusCode: resp.StatusCode,
			Code:       wire.CodeAPIError,
			Message:    fmt.Sprintf("server returned HTTP %d", resp.StatusCode),
		}
	}
	return &TurnFailureError{
		StatusCode: resp.StatusCode,
		Code:       failure.Error,
		Message:    failure.Message,
	}
}
