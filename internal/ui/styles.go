package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA"))

	buttonStyle = lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7D56F4"))

	focusedButtonStyle = buttonStyle.
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))

	disabledButtonStyle = buttonStyle.
		Faint(true).
		BorderForeground(lipgloss.Color("#444444")).
		Foreground(lipgloss.Color("#666666"))

	recStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF4B4B"))

	idleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9A9A9A"))

	readoutStyle = lipgloss.NewStyle().
		Width(16)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF4B4B"))

	hintStyle = lipgloss.NewStyle().
		Faint(true)
)
