package cli

import "github.com/charmbracelet/lipgloss"

var (
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
	headerStyle  = lipgloss.NewStyle().Bold(true)
)
