package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/cardflow-sh/cardflow/internal/ingest"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			cmd := m.cleanup()
			return m, cmd
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if !m.busy() {
			// Enter submits; Shift+Enter passes through as a newline.
			if k.Mod&tea.ModShift == 0 {
				return m.handleSubmit()
			}
		}

	case tea.KeyUp:
		if !m.busy() && m.input.Line() == 0 {
			return m.navigateHistory(-1)
		}

	case tea.KeyDown:
		if !m.busy() && m.input.Line() == m.input.LineCount()-1 {
			return m.navigateHistory(1)
		}

	case tea.KeyEscape:
		if m.busy() {
			m.cancelStream()
			return m, nil
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Always allow typing, even while a turn streams; users can prepare
	// the next message.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second quits.
	if now.Sub(m.lastCtrlC) < time.Second {
		cmd := m.cleanup()
		return m, cmd
	}
	m.lastCtrlC = now

	if m.busy() {
		m.cancelStream()
		m.addNotice(notice{kind: "system", text: "(Canceled)"})
		m.rebuildViewportContent()
		return m, nil
	}

	m.input.Reset()
	m.pending = nil
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" && len(m.pending) == 0 {
		return m, nil
	}

	if strings.HasPrefix(query, "/") {
		return m.handleSlashCommand(query)
	}

	if query != "" {
		m.history = append(m.history, query)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		m.historyIdx = len(m.history)
	}

	userMsg := m.buildUserMessage(query)
	if err := m.session.BeginTurn(userMsg); err != nil {
		m.addNotice(notice{kind: "error", text: err.Error()})
		m.rebuildViewportContent()
		return m, nil
	}
	m.pending = nil
	m.input.Reset()
	m.rebuildViewportContent()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		m.startStream(),
	)
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
	return m, nil
}

func (m *Model) cancelStream() {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
}

// cleanup cancels any active stream and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	m.cancelStream()
	m.streamEventCh = nil
	return tea.Quit
}

// buildUserMessage assembles the outgoing user message from the typed text
// and any staged attachments. Text-like files fold into the prompt; images
// and PDFs travel as file parts.
func (m *Model) buildUserMessage(text string) wire.Message {
	msg := wire.Message{ID: newMessageID(), Role: wire.RoleUser}
	for _, f := range m.pending {
		if f.Kind == ingest.KindBinary {
			msg.Parts = append(msg.Parts, wire.Part{
				Type:      wire.PartTypeFile,
				MediaType: f.MediaType,
				Filename:  f.Filename,
				Data:      f.Data,
			})
		} else {
			msg.Parts = append(msg.Parts, wire.Part{
				Type: wire.PartTypeText,
				Text: f.PromptText(),
			})
		}
	}
	if text != "" {
		msg.Parts = append(msg.Parts, wire.Part{Type: wire.PartTypeText, Text: text})
	}
	return msg
}
