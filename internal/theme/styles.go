package theme

import "github.com/charmbracelet/lipgloss"

// Table styles shared by the bindings and history commands
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Foreground(ColorNormal).
			Padding(0, 1)

	ChordStyle = CellStyle.
			Foreground(ColorSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BorderStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Exit status styles
var (
	ErrorStyle   = CellStyle.Foreground(ColorError)
	OKStyle      = CellStyle.Foreground(ColorOK)
	RunningStyle = CellStyle.Foreground(ColorWarn)
)
