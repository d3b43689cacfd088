package tui

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/cardflow-sh/cardflow/internal/ingest"
	"github.com/cardflow-sh/cardflow/internal/session"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdFile  = "/file"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

func newMessageID() string {
	return uuid.NewString()
}

func (m *Model) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case cmdHelp:
		m.addNotice(notice{
			kind: "system",
			text: "Commands: " + cmdHelp + ", " + cmdClear + ", " + cmdFile + " <path>, " + cmdExit +
				"\nShortcuts:\n  Enter: send message\n  Shift+Enter: new line\n  Ctrl+C: cancel/clear\n  Ctrl+D: exit\n  Up/Down: history\n  PgUp/PgDn: scroll",
		})

	case cmdClear:
		m.session = session.New()
		m.notices = nil
		m.pending = nil

	case cmdFile:
		if arg == "" {
			m.addNotice(notice{kind: "error", text: "usage: /file <path>"})
			break
		}
		m.attachFile(arg)

	case cmdExit, cmdQuit:
		cleanupCmd := m.cleanup()
		return m, cleanupCmd

	default:
		m.addNotice(notice{kind: "error", text: "Unknown command: " + cmd})
	}

	m.input.Reset()
	m.rebuildViewportContent()
	return m, nil
}

// attachFile reads, validates, and stages a file for the next message.
func (m *Model) attachFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		m.addNotice(notice{kind: "error", text: "reading file: " + err.Error()})
		return
	}

	name := filepath.Base(path)
	processed, err := ingest.ProcessFile(name, mediaTypeFor(path), data)
	if err != nil {
		m.addNotice(notice{kind: "error", text: err.Error()})
		return
	}

	m.pending = append(m.pending, processed)
	m.addNotice(notice{
		kind: "system",
		text: fmt.Sprintf("Attached %s (%s, %s)", name, processed.MediaType, ingest.FormatSize(int64(len(data)))),
	})
}

// mediaTypeFor maps a filename extension to a media type. Unknown
// extensions pass through empty and fail ingest validation with a clear
// message.
func mediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt", ".md", ".log":
		return "text/plain"
	}
	return mime.TypeByExtension(ext)
}
