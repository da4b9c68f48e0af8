package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("34")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	DangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError).
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorError).
			Padding(0, 2)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Symbols for visual feedback.
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠️"
	SymbolBullet  = "•"
)

// StatusStyle picks the color used to print an import status.
func StatusStyle(s whetl.Status) lipgloss.Style {
	switch s {
	case whetl.StatusSuccess:
		return SuccessStyle
	case whetl.StatusFail:
		return ErrorStyle
	case whetl.StatusStarted:
		return TitleStyle
	case whetl.StatusSkipped:
		return MutedStyle
	default:
		return WarningStyle
	}
}
