package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/cardflow-sh/cardflow/internal/client"
	"github.com/cardflow-sh/cardflow/internal/session"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4)
		m.help.SetWidth(msg.Width)
		m.renderer.SetWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.rebuildViewportContent()
		}
		return m, cmd

	case streamStartedMsg:
		m.streamCancel = msg.cancel
		m.streamEventCh = msg.eventCh
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForStream(msg.eventCh)

	case streamEventMsg:
		if err := m.session.Apply(msg.event); err != nil {
			// A protocol violation is a client/server mismatch. Keep what
			// streamed, surface the violation, drop the rest of the stream.
			m.session.Fail(wire.CodeAPIError, err.Error())
			m.addNotice(notice{kind: "error", text: err.Error()})
			m.finishStream()
			m.rebuildViewportContent()
			m.viewport.GotoBottom()
			return m, m.input.Focus()
		}
		if m.session.Phase() == session.PhaseErrored {
			// Terminal error event; the server closes the stream after it.
			if f := m.session.Failure(); f != nil {
				m.addNotice(notice{kind: "error", text: f.Message})
			}
			m.finishStream()
			m.rebuildViewportContent()
			m.viewport.GotoBottom()
			return m, m.input.Focus()
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, listenForStream(m.streamEventCh)

	case streamDoneMsg:
		m.finishStream()
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case streamErrorMsg:
		m.finishStream()
		m.reportStreamError(msg.err)
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// finishStream releases stream resources after completion or failure.
func (m *Model) finishStream() {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.streamEventCh = nil
}

// reportStreamError settles the session and converts a transport failure
// into a display notice.
func (m *Model) reportStreamError(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		m.session.Fail(wire.CodeAPIError, "canceled")
		m.addNotice(notice{kind: "system", text: "(Canceled)"})

	case errors.Is(err, context.DeadlineExceeded):
		m.session.Fail(wire.CodeAPIError, "timeout")
		m.addNotice(notice{kind: "error", text: "Turn timed out. Try a simpler request."})

	default:
		var rejected *client.TurnFailureError
		if errors.As(err, &rejected) {
			m.session.Fail(rejected.Code, rejected.Message)
			if rejected.Code == wire.CodeBudgetExceeded {
				m.addNotice(notice{kind: "error", text: "Budget exceeded: " + rejected.Message})
			} else {
				m.addNotice(notice{kind: "error", text: rejected.Message})
			}
			return
		}
		if m.session.Phase() != session.PhaseErrored {
			m.session.Fail(wire.CodeAPIError, err.Error())
		}
		m.addNotice(notice{kind: "error", text: err.Error()})
	}
}
