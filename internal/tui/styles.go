package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Primary   = lipgloss.Color("#CBA6F7")
	Accent    = lipgloss.Color("#74C7EC")
	Success   = lipgloss.Color("#A6E3A1")
	Danger    = lipgloss.Color("#F38BA8")
	Warning   = lipgloss.Color("#FAB387")
	TextCol   = lipgloss.Color("#CDD6F4")
	TextMuted = lipgloss.Color("#A6ADC8")
	Border    = lipgloss.Color("#45475A")
	Surface   = lipgloss.Color("#313244")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent).
			Padding(0, 1).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Width(12)

	LabelFocusedStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true).
				Width(12)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	PanelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true).
			Padding(1, 2)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(Success)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(Danger).
				Bold(true)

	ConfirmStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			MarginTop(1)
)

// TableStyles is the records table look.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true).
		Foreground(Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(TextCol).
		Background(Surface).
		Bold(true)
	return s
}
