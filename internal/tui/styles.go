package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF6B6B") // Red - titles, actors
	ColorSecondary = lipgloss.Color("#4ecdc4") // Teal - locations, subtitles
	ColorAccent    = lipgloss.Color("#ffe66d") // Yellow - characters, components
	ColorMuted     = lipgloss.Color("#666666") // Gray - help text
	ColorSuccess   = lipgloss.Color("#a8e6cf") // Green - status, rooms
	ColorText      = lipgloss.Color("#f1faee") // Light text
	ColorLabel     = lipgloss.Color("#a8dadc") // Label color
	ColorBg        = lipgloss.Color("#1a1a2e") // Dark background
	ColorBgAlt     = lipgloss.Color("#2d3436") // Alt background
	ColorBorder    = lipgloss.Color("#3d5a80") // Border color
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorBg).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	charTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 2).
			Margin(0, 1)

	charTabActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Background(ColorBgAlt).
				Padding(0, 2).
				Margin(0, 1)

	charTabPinyinStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Italic(true)

	bigCharStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorBg).
			Padding(3, 12).
			Align(lipgloss.Center)

	artStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	pinyinUnderStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true).
				Align(lipgloss.Center).
				Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Bold(true).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	actorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	componentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	roomStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	wordNavStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			Padding(0, 1)

	wordDisplayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorAccent).
				Padding(0, 2).
				Margin(1, 0)

	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2).
			Margin(1, 0)

	loadingStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)
