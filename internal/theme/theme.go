package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-extension/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the panel title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// GroupStyle renders a panel group heading.
var GroupStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// ItemStyle indents todos under their group.
var ItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// MetaStyle is used for due times, counts and other secondary text.
var MetaStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle marks active todos whose due time has passed.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ReminderStyle marks a scheduled reminder.
var ReminderStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// HelpStyle is used for hints and empty states.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder).
	Padding(0, 1)

// StatusStyle returns a color-coded style for the given todo status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.TodoStatusNotStarted:
		return base.Foreground(ColorBlue)
	case model.TodoStatusInProgress:
		return base.Foreground(ColorYellow)
	case model.TodoStatusCompleted:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// StatusMark returns the checkbox shown for a todo status.
func StatusMark(status string) string {
	switch status {
	case model.TodoStatusInProgress:
		return "[~]"
	case model.TodoStatusCompleted:
		return "[x]"
	case model.TodoStatusCancelled:
		return "[-]"
	default:
		return "[ ]"
	}
}
