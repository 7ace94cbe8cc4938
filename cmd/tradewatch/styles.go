package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// UpStyle for rising prices.
	UpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// DownStyle for falling prices.
	DownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// ChartStyle for the price line.
	ChartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	// AlertStyle for the alert banner.
	AlertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// FormatChangeWithColor renders the change summary with a direction marker.
func FormatChangeWithColor(text string, change decimal.Decimal) string {
	switch change.Sign() {
	case 1:
		return UpStyle.Render(text + " ▲")
	case -1:
		return DownStyle.Render(text + " ▼")
	default:
		return text
	}
}
