package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// returns a new welcome screen
func NewWelcome(serverURL string) *Welcome {
	return &Welcome{
		serverURL: serverURL,
		commands: []Command{
			{Name: "new", Description: "start a new canvas"},
			{Name: "join <session-id>", Description: "open an existing canvas"},
			{Name: "quit", Description: "exit"},
		},
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			cmd := m.executeCommand()
			m.input = ""
			return m, cmd
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}

	return m, nil
}

func (m *Welcome) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("小红书笔记创作画布"))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("server: " + m.serverURL))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		))
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> ") + inputStyle.Render(m.input+"_"))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	fields := strings.Fields(m.input)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "quit":
		return tea.Quit

	case "new":
		return func() tea.Msg { return JoinSessionMsg{} }

	case "join":
		if len(fields) < 2 {
			return func() tea.Msg {
				return ErrorMsg{err: fmt.Errorf("usage: join <session-id>")}
			}
		}

		sessionID := fields[1]
		return func() tea.Msg { return JoinSessionMsg{sessionID: sessionID} }

	default:
		cmd := fields[0]
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("unknown command: %s", cmd)}
		}
	}
}
