package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"codeberg.org/notecanvas/server/api/rest/chat"
	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/canvas"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/state"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateConnecting
	StateEditor
)

// main TUI application model
type Model struct {
	state   AppState
	width   int
	height  int
	err     error
	welcome *Welcome
	editor  *EditorModel
	ws      *WSClient
	rest    *RESTClient

	// joined immediately when set
	initialSession string
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// asks the app to connect, "" creates a new session
type JoinSessionMsg struct {
	sessionID string
}

// the websocket is up and the first snapshot has arrived
type ConnectedMsg struct {
	sessionID string
}

// the server pushed a new state value
type SnapshotMsg struct {
	snap state.Snapshot
}

// the agent asks the human to decide something
type ActionRequestMsg struct {
	req bridge.Request
}

// an action request was answered or closed
type ActionResolvedMsg struct {
	id       string
	decision bridge.Decision
	closed   bool
}

// an error frame sent by the server
type ServerErrorMsg struct {
	code    string
	message string
}

// the connection is gone; reason is set when the server said why
type DisconnectedMsg struct {
	reason string
	err    error
}

type ChatReplyMsg struct {
	resp *chat.Response
}

type ChatErrorMsg struct {
	err error
}

// one line of the visible conversation
type transcriptEntry struct {
	role    string
	content string
}

// canvas editor and chat panel for one session
type EditorModel struct {
	input           textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	glamourRenderer *glamour.TermRenderer
	width           int
	height          int
	ready           bool

	canvas *canvas.Canvas
	ws     *WSClient
	rest   *RESTClient

	history    []llm.Message
	transcript []transcriptEntry

	// open action requests in arrival order
	pending []bridge.Request

	isFetching bool
	status     string
}

// welcome screen model
type Welcome struct {
	serverURL string
	input     string
	commands  []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
}
