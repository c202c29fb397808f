package canvas

import "github.com/charmbracelet/lipgloss"

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorAccent    = lipgloss.Color("#6766FC")
	colorRed       = lipgloss.Color("#FF2442")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(colorDarkGray).
				Italic(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorAccent).
			Padding(0, 1)

	heatStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	logDoneStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	logActiveStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	confirmTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorRed)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)
