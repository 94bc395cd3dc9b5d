package console

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("6")
	colorYellow = lipgloss.Color("3")
	colorGreen  = lipgloss.Color("2")
	colorDim    = lipgloss.Color("8")
	colorWhite  = lipgloss.Color("15")
	colorRed    = lipgloss.Color("1")

	headerStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	normalStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)
