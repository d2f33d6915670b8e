package tui

import "github.com/charmbracelet/lipgloss"

const listWidth = 40

var (
	colorAccent = lipgloss.Color("63")
	colorMuted  = lipgloss.Color("245")
	colorRead   = lipgloss.Color("39")
	colorBadge  = lipgloss.Color("203")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(colorAccent)

	listPaneStyle = lipgloss.NewStyle().
			Width(listWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(colorMuted).
			PaddingRight(1)
	threadPaneStyle = lipgloss.NewStyle().PaddingLeft(1)

	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	nameStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	badgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBadge)
	incomingStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted)
	outgoingStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent)
	focusedStyle  = outgoingStyle.BorderForeground(colorRead)

	sentTickStyle = lipgloss.NewStyle().Foreground(colorMuted)
	readTickStyle = lipgloss.NewStyle().Foreground(colorRead)

	errorStyle = lipgloss.NewStyle().Foreground(colorBadge)
	helpStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)
