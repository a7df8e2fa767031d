package tui

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth = 32
	aiPanelLines = 14
)

var (
	colorAccent = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#E5E7EB")
	colorError  = lipgloss.Color("#EF4444")
	colorOK     = lipgloss.Color("#10B981")

	styleBrand    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleSubtitle = lipgloss.NewStyle().Foreground(colorMuted)
	styleDivider  = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))

	styleItem         = lipgloss.NewStyle().Foreground(colorText)
	styleItemSelected = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleItemDim      = lipgloss.NewStyle().Foreground(colorMuted)

	stylePane        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151"))
	stylePaneFocused = stylePane.BorderForeground(colorAccent)

	styleAILabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	styleAction   = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	styleActionOn = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).PaddingLeft(1)

	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	styleDialog  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorError).Padding(1, 3)
)
