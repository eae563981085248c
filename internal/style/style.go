package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Dim     = lipgloss.Color("#6B7280")
	White   = lipgloss.Color("#F9FAFB")

	Banner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Bold    = lipgloss.NewStyle().Bold(true).Foreground(White)
	DimText = lipgloss.NewStyle().Foreground(Dim)

	Up      = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Down    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(Yellow)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingRight(2)

	ErrorBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1).
			MarginTop(1)

	SuccessBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1).
			MarginTop(1)

	WarningBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Yellow).
			Foreground(Yellow).
			Padding(0, 1).
			MarginTop(1)

	// Key-value
	Key = lipgloss.NewStyle().Foreground(Dim).Width(16)
	Val = lipgloss.NewStyle().Foreground(White)
)

// Status renders a status word in its color.
func Status(s types.Status) string {
	switch s {
	case types.StatusUp:
		return Up.Render(string(s))
	case types.StatusDown:
		return Down.Render(string(s))
	case types.StatusSlow:
		return Warning.Render(string(s))
	case "":
		return DimText.Render("-")
	default:
		return DimText.Render(string(s))
	}
}

// Dot is a colored bullet for a status.
func Dot(s types.Status) string {
	switch s {
	case types.StatusUp:
		return Up.Render("●")
	case types.StatusDown:
		return Down.Render("●")
	case types.StatusSlow:
		return Warning.Render("●")
	default:
		return DimText.Render("●")
	}
}

// KV renders an aligned key/value line.
func KV(key, value string) string {
	return Key.Render(key) + Val.Render(value)
}
