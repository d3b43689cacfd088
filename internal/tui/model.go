// Package tui provides the Bubble Tea terminal interface for cardflow.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/cardflow-sh/cardflow/internal/client"
	"github.com/cardflow-sh/cardflow/internal/ingest"
	"github.com/cardflow-sh/cardflow/internal/render"
	"github.com/cardflow-sh/cardflow/internal/session"
)

// Memory bounds to prevent unbounded growth.
const (
	maxHistory = 100 // Maximum command history entries
	maxNotices = 50  // Maximum system/error notices kept for display
)

// streamTimeout caps a single turn stream on the client side. The server
// enforces its own turn timeout; this is the safety net above it.
const streamTimeout = 5 * time.Minute

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// notice is an out-of-band display line (slash command output, cancel
// markers, transport errors). Conversation content lives in the session.
type notice struct {
	kind string // "system" or "error"
	text string
}

// Model is the Bubble Tea model for the cardflow terminal interface.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	lastCtrlC time.Time

	// Conversation state machine; owns history and the streaming draft.
	session *session.Session

	// Files staged via /file for the next message.
	pending []*ingest.ProcessedFile

	// Output
	spinner spinner.Model
	viewBuf strings.Builder
	notices []notice

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Stream management. Single union channel with discriminated events;
	// Bubble Tea's event loop provides the synchronization.
	streamCancel  context.CancelFunc
	streamEventCh <-chan streamEvent

	// Dependencies
	api       *client.Client
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Dimensions
	width  int
	height int

	// Rendering
	styles   Styles
	renderer *render.Renderer
}

// addNotice appends a display notice and enforces the maxNotices bound.
func (m *Model) addNotice(n notice) {
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// New creates a Model bound to a server client.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, api *client.Client) (*Model, error) {
	if api == nil {
		return nil, errors.New("tui.New: client is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Describe, attach with /file, or ask anything..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Disable built-in keyboard handling; keys are routed explicitly in
	// handleKey to avoid conflicts with textarea and history navigation.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		api:       api,
		ctx:       ctx,
		ctxCancel: cancel,
		session:   session.New(),
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      help.New(),
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		renderer:  render.New(80),
		history:   make([]string, 0, maxHistory),
		width:     80,
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}

// busy reports whether a turn is in flight.
func (m *Model) busy() bool {
	switch m.session.Phase() {
	case session.PhaseSubmitted, session.PhaseStreaming:
		return true
	default:
		return false
	}
}
