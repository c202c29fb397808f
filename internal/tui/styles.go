package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorAccent    = lipgloss.Color("#6766FC")
	colorRed       = lipgloss.Color("#FF2442")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandDescStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	confirmBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(0, 1).
			MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true)
)

const logo = `
  ███╗   ██╗ ██████╗ ████████╗███████╗
  ████╗  ██║██╔═══██╗╚══██╔══╝██╔════╝
  ██╔██╗ ██║██║   ██║   ██║   █████╗
  ██║╚██╗██║██║   ██║   ██║   ██╔══╝
  ██║ ╚████║╚██████╔╝   ██║   ███████╗
  ╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚══════╝
`
