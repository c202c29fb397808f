package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// NewApp builds the client for serverURL. A non-empty sessionID is joined
// on start instead of showing the welcome screen.
func NewApp(serverURL, sessionID string) *Model {
	return &Model{
		state:          StateWelcome,
		welcome:        NewWelcome(serverURL),
		ws:             NewWSClient(serverURL),
		rest:           NewRESTClient(serverURL),
		initialSession: sessionID,
	}
}

func (m *Model) Init() tea.Cmd {
	if m.initialSession == "" {
		return nil
	}

	m.state = StateConnecting
	return m.ws.ConnectCmd(m.initialSession)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.ws.Close()
			return m, tea.Quit
		}

		// any key dismisses an error on the welcome screen
		if m.err != nil && m.state == StateWelcome {
			m.err = nil
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ErrorMsg:
		m.err = msg.err
		if m.state == StateConnecting {
			m.state = StateWelcome
		}
		return m, nil

	case JoinSessionMsg:
		m.state = StateConnecting
		return m, m.ws.ConnectCmd(msg.sessionID)

	case ConnectedMsg:
		m.state = StateEditor
		m.editor = NewEditor(m.ws, m.rest)

		var sizeCmd tea.Cmd
		if m.width > 0 {
			m.editor, sizeCmd = m.editor.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}

		return m, tea.Batch(m.editor.Init(), sizeCmd, m.ws.Listen())

	case DisconnectedMsg:
		m.err = disconnectError(msg)
		return m, nil

	case SnapshotMsg, ActionRequestMsg, ActionResolvedMsg, ServerErrorMsg:
		// server events keep the listen loop going
		if m.editor == nil {
			return m, m.ws.Listen()
		}

		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)

		return m, tea.Batch(cmd, m.ws.Listen())
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateEditor:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateConnecting:
		return "\n  connecting..."

	case StateEditor:
		return m.editor.View()

	default:
		return "Unknown state"
	}
}

func disconnectError(msg DisconnectedMsg) error {
	if msg.reason != "" {
		return fmt.Errorf("disconnected: %s", msg.reason)
	}

	if msg.err != nil {
		return fmt.Errorf("disconnected: %w", msg.err)
	}

	return fmt.Errorf("disconnected")
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press Ctrl+C to exit\n", err)
}
