package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

const accentColor = "#E8714D"

// cardflow ASCII art banner.
var bannerArt = []string{
	" ██████╗ █████╗ ██████╗ ██████╗ ███████╗██╗      ██████╗ ██╗    ██╗",
	"██╔════╝██╔══██╗██╔══██╗██╔══██╗██╔════╝██║     ██╔═══██╗██║    ██║",
	"██║     ███████║██████╔╝██║  ██║█████╗  ██║     ██║   ██║██║ █╗ ██║",
	"██║     ██╔══██║██╔══██╗██║  ██║██╔══╝  ██║     ██║   ██║██║███╗██║",
	"╚██████╗██║  ██║██║  ██║██████╔╝██║     ███████╗╚██████╔╝╚███╔███╔╝",
	" ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚═╝     ╚══════╝ ╚═════╝  ╚══╝╚══╝ ",
}

// Styles contains all lipgloss styles for the TUI chrome.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Chip      lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentColor)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

var welcomeTips = []string{
	"Tips for getting started:",
	"  • Ask for analysis and get structured cards, charts, and tables",
	"  • Attach images, PDFs, or CSVs with /file <path>",
	"  • Use /help to see available commands",
	"  • Press Ctrl+C to cancel, Ctrl+D to exit",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
