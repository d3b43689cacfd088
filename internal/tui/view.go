package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/cardflow-sh/cardflow/internal/catalog"
	"github.com/cardflow-sh/cardflow/internal/ingest"
	"github.com/cardflow-sh/cardflow/internal/session"
	"github.com/cardflow-sh/cardflow/internal/wire"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for scrollable conversation history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	if len(m.pending) > 0 {
		_, _ = m.viewBuf.WriteString(m.renderFileChips())
		_, _ = m.viewBuf.WriteString("\n")
	}

	// Input prompt always shows; users can type while a turn streams.
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport from the session and
// notices. Cards re-render from settled outputs, so a rebuild never
// changes an already-settled card.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(m.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	for _, msg := range m.session.History() {
		m.renderMessage(&b, msg)
	}

	if m.session.Phase() == session.PhaseStreaming {
		m.renderStreamingDraft(&b)
	}

	if m.session.Phase() == session.PhaseSubmitted {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" Thinking...\n\n")
	}

	for _, n := range m.notices {
		switch n.kind {
		case "error":
			_, _ = b.WriteString(m.styles.Error.Render("Error: " + n.text))
		default:
			_, _ = b.WriteString(m.styles.System.Render(n.text))
		}
		_, _ = b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

func (m *Model) renderMessage(b *strings.Builder, msg wire.Message) {
	switch msg.Role {
	case wire.RoleUser:
		_, _ = b.WriteString(m.styles.User.Render("You> "))
		for i, p := range msg.Parts {
			if i > 0 {
				_, _ = b.WriteString("\n")
			}
			switch p.Type {
			case wire.PartTypeText:
				_, _ = b.WriteString(p.Text)
			case wire.PartTypeFile:
				_, _ = b.WriteString(m.styles.Chip.Render("📎 " + p.Filename + " (" + p.MediaType + ")"))
			}
		}
		_, _ = b.WriteString("\n\n")

	case wire.RoleAssistant:
		for _, p := range msg.Parts {
			switch p.Type {
			case wire.PartTypeText:
				if p.Text != "" {
					_, _ = b.WriteString(m.styles.Assistant.Render("cardflow> "))
					_, _ = b.WriteString(p.Text)
					_, _ = b.WriteString("\n\n")
				}
			case wire.PartTypeTool:
				m.renderToolPart(b, p.ToolName, p.State, p.Output, p.ErrorText)
			}
		}
	}
}

// renderStreamingDraft renders the in-flight assistant message: settled
// invocations as cards, in-flight ones as skeletons.
func (m *Model) renderStreamingDraft(b *strings.Builder) {
	for _, p := range m.session.StreamingParts() {
		switch p.Type {
		case wire.PartTypeText:
			if t := p.Text(); t != "" {
				_, _ = b.WriteString(m.styles.Assistant.Render("cardflow> "))
				_, _ = b.WriteString(t)
				_, _ = b.WriteString("\n\n")
			}
		case wire.PartTypeTool:
			switch p.State {
			case wire.ToolInputStreaming, wire.ToolInputAvailable:
				_, _ = b.WriteString(m.renderer.Skeleton(catalog.Name(p.ToolName)))
				_, _ = b.WriteString("\n\n")
			default:
				m.renderToolPart(b, p.ToolName, p.State, p.Output, p.ErrorText)
			}
		}
	}
}

func (m *Model) renderToolPart(b *strings.Builder, toolName, state string, output []byte, errText string) {
	switch state {
	case wire.ToolOutputAvailable:
		_, _ = b.WriteString(m.renderer.Card(catalog.Name(toolName), output))
	case wire.ToolOutputError:
		_, _ = b.WriteString(m.renderer.ErrorCard(toolName, errText))
	default:
		_, _ = b.WriteString(m.renderer.Skeleton(catalog.Name(toolName)))
	}
	_, _ = b.WriteString("\n\n")
}

func (m *Model) renderFileChips() string {
	chips := make([]string, 0, len(m.pending))
	for _, f := range m.pending {
		chips = append(chips, m.styles.Chip.Render("📎 "+f.Filename+" ("+ingest.FormatSize(int64(len(f.Data)+len(f.Text)))+")"))
	}
	return strings.Join(chips, " ")
}

func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (m *Model) renderStatusBar() string {
	var bindings []key.Binding
	if m.busy() {
		bindings = []key.Binding{
			m.keys.EscCancel, m.keys.Cancel,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	} else {
		bindings = []key.Binding{
			m.keys.Submit, m.keys.NewLine, m.keys.History,
			m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
		}
	}
	return m.help.ShortHelpView(bindings)
}
