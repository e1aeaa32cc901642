package viewer

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#8B5CF6") // violet
	colorText    = lipgloss.Color("#F8FAFC")
	colorMuted   = lipgloss.Color("#94A3B8")
	colorBgPanel = lipgloss.Color("#1E293B")
	colorError   = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorBgPanel).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
