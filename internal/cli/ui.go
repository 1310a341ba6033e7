package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan = lipgloss.Color("36")
	colorDim  = lipgloss.Color("240")
)

var (
	// StyleTitle for headings above tables.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for table borders and muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
)
