package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/cardflow-sh/cardflow/internal/wire"
)

// streamBufferSize is sized for a burst of protocol events during UI render
// delays while keeping memory bounded.
const streamBufferSize = 100

// streamEvent is a discriminated union for all stream outcomes. Using a
// single channel with a union type simplifies select logic.
type streamEvent struct {
	// Exactly one of these is set per event.
	event wire.Event // protocol event (when hasEvent is true)
	err   error      // transport or protocol failure (when non-nil)
	done  bool       // stream closed cleanly after turn-complete

	hasEvent bool
}

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type streamEventMsg struct {
	event wire.Event
}

type streamDoneMsg struct{}

type streamErrorMsg struct {
	err error
}

// startStream creates a command that posts the current history and pumps
// the server's event stream into the union channel.
//
// Goroutine lifecycle: the spawned goroutine exits when the stream
// completes, the context is canceled, or an error occurs. Channel closure
// signals completion; no WaitGroup needed.
func (m *Model) startStream() tea.Cmd {
	history := m.session.History()
	return func() tea.Msg {
		eventCh := make(chan streamEvent, streamBufferSize)
		ctx, cancel := context.WithTimeout(m.ctx, streamTimeout)

		go func() {
			defer cancel()
			defer close(eventCh)

			// Panic recovery to prevent TUI lockup.
			defer func() {
				if r := recover(); r != nil {
					slog.Error("stream panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("stream panic: %v", r)}:
					default:
					}
				}
			}()

			sawComplete := false
			for ev, err := range m.api.Turn(ctx, wire.TurnRequest{Messages: history}) {
				if err != nil {
					select {
					case eventCh <- streamEvent{err: err}:
					case <-ctx.Done():
					}
					return
				}
				if ev.Type == wire.EventTurnComplete {
					sawComplete = true
				}
				select {
				case eventCh <- streamEvent{event: ev, hasEvent: true}:
				case <-ctx.Done():
					return
				}
			}

			if sawComplete {
				select {
				case eventCh <- streamEvent{done: true}:
				case <-ctx.Done():
				}
				return
			}

			// The iterator exited without a completion signal: canceled
			// context or a connection dropped mid-turn.
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("stream ended before the turn completed")
				slog.Warn("stream ended without turn-complete")
			}
			select {
			case eventCh <- streamEvent{err: err}:
			default:
			}
		}()

		return streamStartedMsg{eventCh: eventCh, cancel: cancel}
	}
}

// listenForStream creates a command to wait for the next stream event.
// Empty events are skipped via loop instead of recursion.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}
		for {
			event, ok := <-eventCh
			if !ok {
				return streamErrorMsg{err: fmt.Errorf("stream ended without completion signal")}
			}
			switch {
			case event.err != nil:
				return streamErrorMsg{err: event.err}
			case event.done:
				return streamDoneMsg{}
			case event.hasEvent:
				return streamEventMsg{event: event.event}
			default:
				continue
			}
		}
	}
}
