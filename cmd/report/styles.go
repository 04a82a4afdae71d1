package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	ErrorStyle = lipgloss.NewStyle().Bold(true)

	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// FormatSigned renders a value with an arrow for its sign.
func FormatSigned(value float64, format string) string {
	text := fmt.Sprintf(format, value)

	switch {
	case value > 0:
		return text + " ▲"
	case value < 0:
		return text + " ▼"
	default:
		return text
	}
}
