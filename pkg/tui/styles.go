package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	colorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	colorMatch   = lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#F1FA8C"}
	colorShared  = lipgloss.AdaptiveColor{Light: "#A34700", Dark: "#FFB86C"}

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"})

	tipStyle      = lipgloss.NewStyle().Foreground(colorText)
	internalStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	supportStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	matchStyle    = lipgloss.NewStyle().Foreground(colorMatch)
	sharedStyle   = lipgloss.NewStyle().Foreground(colorShared)
	collapseStyle = lipgloss.NewStyle().Foreground(colorWarn)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)
