package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/canvas"
	"codeberg.org/notecanvas/server/internal/llm"
)

const (
	headerHeight = 2
	footerHeight = 5
)

// returns an editor bound to an already connected client
func NewEditor(wsClient *WSClient, rest *RESTClient) *EditorModel {
	ti := textinput.New()
	ti.Placeholder = "和助手聊聊你的产品，或输入 /help 查看命令"
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return &EditorModel{
		input:   ti,
		spinner: sp,
		canvas:  canvas.New(wsClient),
		ws:      wsClient,
		rest:    rest,
		history: []llm.Message{},
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case SnapshotMsg:
		m.refresh()
		return m, nil

	case ActionRequestMsg:
		if msg.req.Name == bridge.ActionDeleteReferenceMaterials && !m.hasPending(msg.req.ID) {
			m.pending = append(m.pending, msg.req)
		}
		m.refresh()
		return m, nil

	case ActionResolvedMsg:
		m.dropPending(msg.id)
		m.refresh()
		return m, nil

	case ServerErrorMsg:
		m.status = errorStyle.Render(fmt.Sprintf("%s: %s", msg.code, msg.message))
		return m, nil

	case ChatReplyMsg:
		m.isFetching = false

		if msg.resp.Reply != "" {
			m.history = append(m.history, llm.Message{Role: "assistant", Content: msg.resp.Reply})
			m.transcript = append(m.transcript, transcriptEntry{role: "assistant", content: msg.resp.Reply})
		}

		m.status = ""
		if msg.resp.Model != "" {
			m.status = infoStyle.Render(fmt.Sprintf("model: %s/%s", msg.resp.Provider, msg.resp.Model))
		}

		m.refresh()
		return m, nil

	case ChatErrorMsg:
		m.isFetching = false
		m.status = errorStyle.Render("error: " + msg.err.Error())
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *EditorModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// y/n answer the oldest open request while the input is empty
	if req, ok := m.activeRequest(); ok && m.input.Value() == "" {
		switch msg.String() {
		case "y", "Y":
			return m.respond(req, bridge.Yes), true
		case "n", "N":
			return m.respond(req, bridge.No), true
		}
	}

	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return nil, true
		}

		m.input.SetValue("")

		if strings.HasPrefix(line, "/") {
			m.command(line)
			return nil, true
		}

		return m.submit(line), true

	case "ctrl+l":
		m.clearConversation()
		return nil, true
	}

	return nil, false
}

func (m *EditorModel) command(line string) {
	switch strings.Fields(line)[0] {
	case "/clear":
		m.clearConversation()
		return
	case "/help":
		m.status = helpText()
		return
	}

	status, err := runCommand(m.canvas, line)
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}

	m.status = successStyle.Render(status)
	m.refresh()
}

// clears the progress log, then sends the conversation to the agent
func (m *EditorModel) submit(text string) tea.Cmd {
	if m.isFetching {
		m.status = errorStyle.Render("the agent is still working on the last message")
		return nil
	}

	m.canvas.PrepareSubmit()

	m.history = append(m.history, llm.Message{Role: "user", Content: text})
	m.transcript = append(m.transcript, transcriptEntry{role: "user", content: text})
	m.isFetching = true
	m.status = ""
	m.refresh()

	messages := append([]llm.Message(nil), m.history...)

	return tea.Batch(m.rest.ChatCmd(m.ws.SessionID(), messages), m.spinner.Tick)
}

func (m *EditorModel) respond(req bridge.Request, decision bridge.Decision) tea.Cmd {
	return func() tea.Msg {
		if err := m.ws.Respond(req.ID, decision); err != nil {
			return ServerErrorMsg{code: "send_failed", message: err.Error()}
		}

		return nil
	}
}

func (m *EditorModel) clearConversation() {
	m.history = []llm.Message{}
	m.transcript = nil
	m.status = ""
	m.refresh()
}

func (m *EditorModel) activeRequest() (bridge.Request, bool) {
	if len(m.pending) == 0 {
		return bridge.Request{}, false
	}

	return m.pending[0], true
}

func (m *EditorModel) hasPending(id string) bool {
	for _, req := range m.pending {
		if req.ID == id {
			return true
		}
	}

	return false
}

func (m *EditorModel) dropPending(id string) {
	kept := m.pending[:0]
	for _, req := range m.pending {
		if req.ID != id {
			kept = append(kept, req)
		}
	}

	m.pending = kept
}

func (m *EditorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(10, width-10)

	bodyHeight := max(3, height-headerHeight-footerHeight)

	if !m.ready {
		m.viewport = viewport.New(width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = bodyHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, width/2-4)),
	)
	if err == nil {
		m.glamourRenderer = renderer
	}

	m.refresh()
}

// rebuilds the viewport from the mirrored state
func (m *EditorModel) refresh() {
	if !m.ready {
		return
	}

	half := max(20, m.width/2-2)

	canvasPane := lipgloss.NewStyle().Width(half).Render(canvas.Render(m.canvas.State()))

	right := []string{m.renderTranscript(half)}
	if req, ok := m.activeRequest(); ok {
		if c, err := m.canvas.Confirmation(req, true); err == nil {
			right = append([]string{confirmBoxStyle.Width(half - 2).Render(canvas.RenderConfirmation(c))}, right...)
		}
	}

	chatPane := lipgloss.NewStyle().Width(half).Render(lipgloss.JoinVertical(lipgloss.Left, right...))

	m.viewport.SetContent(lipgloss.JoinHorizontal(lipgloss.Top, canvasPane, "  ", chatPane))
	m.viewport.GotoBottom()
}

func (m *EditorModel) renderTranscript(width int) string {
	if len(m.transcript) == 0 {
		return infoStyle.Render("还没有对话。")
	}

	var b strings.Builder
	for _, entry := range m.transcript {
		switch entry.role {
		case "user":
			b.WriteString(userStyle.Width(width).Render("你: " + entry.content))
			b.WriteString("\n")
		default:
			b.WriteString(m.renderMarkdown(entry.content))
		}
	}

	return b.String()
}

func (m *EditorModel) renderMarkdown(content string) string {
	if m.glamourRenderer == nil {
		return content + "\n"
	}

	out, err := m.glamourRenderer.Render(content)
	if err != nil {
		return content + "\n"
	}

	return out
}

func (m *EditorModel) View() string {
	if !m.ready {
		return "\n  loading canvas..."
	}

	var b strings.Builder

	header := headerStyle.Render("NOTE CANVAS")
	session := infoStyle.Render("session " + truncate(m.ws.SessionID(), 8) + "  " + m.rest.NoteURL(m.ws.SessionID()))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, header, "  ", session))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	inputBox := inputBoxStyle.Width(max(10, m.width-4)).Render(m.input.View())
	b.WriteString(inputBox)
	b.WriteString("\n")

	switch {
	case m.isFetching:
		b.WriteString(m.spinner.View() + infoStyle.Render(" 助手正在处理..."))
	case m.status != "":
		b.WriteString(m.status)
	default:
		help := "[Enter: send] [Ctrl+L: clear] [Ctrl+C: exit]"
		if len(m.pending) > 0 {
			help = "[y: delete] [n: keep] " + help
		}
		b.WriteString(helpStyle.Render(help))
	}

	return b.String()
}

func helpText() string {
	lines := make([]string, 0, len(editorCommands))
	for _, cmd := range editorCommands {
		lines = append(lines, commandStyle.Render(cmd.Name)+commandDescStyle.Render(cmd.Description))
	}

	return strings.Join(lines, "\n")
}

