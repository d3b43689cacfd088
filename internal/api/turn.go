package api

import (
	"encoding/json"
	"net/http"

	"github.com/cardflow-sh/cardflow/internal/log"
	"github.com/cardflow-sh/cardflow/internal/turn"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

type turnHandler struct {
	runner *turn.Runner
	logger log.Logger
}

// ServeHTTP runs one turn. A failure before the first event produces a JSON
// TurnFailure with 429 for budget exhaustion and 502 otherwise. Once
// streaming has begun the status is already committed, so later failures
// travel as a terminal error event instead.
func (h *turnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req wire.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, wire.TurnFailure{
			Error:   wire.CodeAPIError,
			Message: "malformed turn request: " + err.Error(),
		})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, wire.TurnFailure{
			Error:   wire.CodeAPIError,
			Message: "turn request has no messages",
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, wire.TurnFailure{
			Error:   wire.CodeAPIError,
			Message: "streaming unsupported by connection",
		})
		return
	}

	streaming := false
	for ev, err := range h.runner.Run(r.Context(), req.Messages) {
		if err != nil {
			terr := turn.Classify(err)
			h.logger.Error("turn failed",
				"code", terr.Code,
				"error", err,
				"mid_stream", streaming)
			if !streaming {
				writeJSON(w, failureStatus(terr.Code), wire.TurnFailure{
					Error:   terr.Code,
					Message: terr.Message,
				})
				return
			}
			h.writeEvent(w, flusher, wire.Event{
				Type:      wire.EventError,
				Code:      terr.Code,
				ErrorText: terr.Message,
			})
			return
		}

		if !streaming {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}
		if !h.writeEvent(w, flusher, ev) {
			return
		}
	}
}

func (h *turnHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, ev wire.Event) bool {
	if err := wire.WriteSSE(w, ev); err != nil {
		// Client went away mid-stream; nothing left to do.
		h.logger.Warn("dropping stream", "error", err)
		return false
	}
	flusher.Flush()
	return true
}

func failureStatus(code wire.ErrorCode) int {
	if code == wire.CodeBudgetExceeded {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}
