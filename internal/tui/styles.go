package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorBorder    = lipgloss.Color("#3F4451")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			MarginBottom(1)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorBlue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	TaskStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	TaskSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Strikethrough(true)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginTop(1)

	AlertErrorTitleStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	AlertInfoTitleStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			MarginTop(1)
)
