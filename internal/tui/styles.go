package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed    = lipgloss.Color("#FF0000")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGray   = lipgloss.Color("#666666")
	ColorWhite  = lipgloss.Color("#FFFFFF")
)

// Base styles reused by the recorder view.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(lipgloss.Color("#005F87")).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	LevelGreenStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	LevelYellowStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	LevelRedStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	LevelGrayStyle   = lipgloss.NewStyle().Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)
