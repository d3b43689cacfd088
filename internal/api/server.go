// Package api exposes the turn runner over HTTP. The single substantive
// endpoint streams turn events as Server-Sent Events; failures before the
// first event are plain JSON with a meaningful status code.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cardflow-sh/cardflow/internal/log"
	"github.com/cardflow-sh/cardflow/internal/turn"
)

// Server wraps the HTTP server hosting the turn endpoint.
type Server struct {
	httpServer *http.Server
	logger     log.Logger
}

// NewHandler builds the routed handler with middleware applied.
func NewHandler(runner *turn.Runner, logger log.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/turn", &turnHandler{runner: runner, logger: logger})
	mux.HandleFunc("GET /health", handleHealth)

	return chain(mux,
		recoveryMiddleware(logger),
		loggingMiddleware(logger),
	)
}

// NewServer builds the server on the given listen address.
func NewServer(addr string, runner *turn.Runner, logger log.Logger) *Server {
	handler := NewHandler(runner, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Turns stream for up to the turn timeout; leave headroom.
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
