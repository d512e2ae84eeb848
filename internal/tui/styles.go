package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e2e8f0"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569"))
	unreadStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	selfStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8"))
)
