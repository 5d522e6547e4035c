package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#6c7086"
	colorSurface lipgloss.Color = "#313244"
	colorMantle  lipgloss.Color = "#181825"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorWarning lipgloss.Color = "#f9e2af"
	colorError   lipgloss.Color = "#f38ba8"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 1)

	profileStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	activeWorkspaceStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Background(colorSurface).
				Bold(true).
				Padding(0, 1)

	inactiveWorkspaceStyle = lipgloss.NewStyle().
				Foreground(colorOverlay).
				Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	activeTabStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	warmTabStyle = lipgloss.NewStyle().Foreground(colorSubtext)

	discardedTabStyle = lipgloss.NewStyle().Foreground(colorOverlay)

	pinStyle = lipgloss.NewStyle().Foreground(colorWarning)

	urlStyle = lipgloss.NewStyle().Foreground(colorOverlay)

	statusStyle = lipgloss.NewStyle().Foreground(colorSubtext)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Background(colorMantle).
			Padding(0, 1)

	switcherBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)
)
