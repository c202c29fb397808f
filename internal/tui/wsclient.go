package tui

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

// WSClient keeps a local mirror of one session's store. It satisfies
// canvas.StateWriter: Replace updates the mirror optimistically and sends
// the whole state to the server, whose broadcast then overwrites the
// mirror with the authoritative version.
type WSClient struct {
	endpoint string

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu        sync.RWMutex
	sessionID string
	current   state.Snapshot
	connected bool

	// last version the server sent; optimistic writes do not move it
	serverVersion uint64
	synced        bool

	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

// creates a client for the server at serverURL (http or https)
func NewWSClient(serverURL string) *WSClient {
	return &WSClient{
		endpoint: websocketURL(serverURL),
		current:  state.Snapshot{State: state.Initial()},
		events:   make(chan tea.Msg, eventBufferSize),
		done:     make(chan struct{}),
	}
}

// Connect dials the server and waits for the first snapshot. An empty
// sessionID asks the server to create a session.
func (c *WSClient) Connect(sessionID string) error {
	endpoint := c.endpoint
	if sessionID != "" {
		endpoint += "?session_id=" + url.QueryEscape(sessionID)
	}

	dialer := websocket.Dialer{HandshakeTimeout: connectTimeout}

	conn, resp, err := dialer.Dial(endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// frames before the snapshot (e.g. a request issued while we were
	// registering) are queued like any other event
	deadline := time.Now().Add(connectTimeout)
	for {
		conn.SetReadDeadline(deadline) //nolint:errcheck,gosec

		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close() //nolint:errcheck,gosec
			return fmt.Errorf("failed to read initial snapshot: %w", err)
		}

		if msg.Type == ws.TypeStateSnapshot {
			c.mu.Lock()
			c.sessionID = msg.SessionID
			c.mu.Unlock()

			c.dispatch(msg)
			break
		}

		c.dispatch(msg)
	}

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.pingPump()

	return nil
}

// returns a tea.Cmd that connects and reports the session joined
func (c *WSClient) ConnectCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		if err := c.Connect(sessionID); err != nil {
			return ErrorMsg{err: err}
		}

		return ConnectedMsg{sessionID: c.SessionID()}
	}
}

// Listen waits for the next server event. It must be re-issued after every
// event it delivers.
func (c *WSClient) Listen() tea.Cmd {
	return func() tea.Msg {
		// drain queued events before reporting the close
		select {
		case msg := <-c.events:
			return msg
		default:
		}

		select {
		case msg := <-c.events:
			return msg
		case <-c.done:
			return DisconnectedMsg{reason: "closed"}
		}
	}
}

func (c *WSClient) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sessionID
}

func (c *WSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.connected
}

// returns a copy of the mirrored value
func (c *WSClient) Snapshot() state.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return state.Snapshot{Version: c.current.Version, State: c.current.State.Clone()}
}

// Replace installs next locally and sends it as a state_replace. A failed
// send is reported as an event; the local value stays until the next
// snapshot from the server.
func (c *WSClient) Replace(next state.AgentState) state.Snapshot {
	c.mu.Lock()
	base := c.current.Version
	c.current = state.Snapshot{Version: base + 1, State: next.Normalize().Clone()}
	snap := state.Snapshot{Version: c.current.Version, State: c.current.State.Clone()}
	c.mu.Unlock()

	payload := ws.StateReplacePayload{State: snap.State, BaseVersion: base}
	if err := c.send(ws.TypeStateReplace, payload); err != nil {
		c.emit(ServerErrorMsg{code: "send_failed", message: err.Error()})
	}

	return snap
}

// answers an action request
func (c *WSClient) Respond(id string, decision bridge.Decision) error {
	return c.send(ws.TypeActionResponse, ws.ActionResponsePayload{ID: id, Decision: decision})
}

func (c *WSClient) send(msgType string, payload any) error {
	c.mu.RLock()
	conn, connected, sessionID := c.conn, c.connected, c.sessionID
	c.mu.RUnlock()

	if !connected || conn == nil {
		return ws.ErrConnectionClosed
	}

	msg, err := ws.NewMessage(msgType, sessionID, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec
	return conn.WriteJSON(msg)
}

func (c *WSClient) readPump() {
	defer c.Close()

	for {
		var msg ws.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", "error", err)
			}
			c.emit(DisconnectedMsg{err: err})
			return
		}

		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

		if ended := c.dispatch(msg); ended {
			return
		}
	}
}

// installs snap unless the server already sent one at least as new
func (c *WSClient) install(snap state.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.synced && snap.Version <= c.serverVersion {
		return false
	}

	c.current = snap
	c.serverVersion = snap.Version
	c.synced = true

	return true
}

// turns a server frame into a tea message; reports whether the server
// ended the connection
func (c *WSClient) dispatch(msg ws.Message) bool {
	switch msg.Type {
	case ws.TypeStateSnapshot:
		var p ws.StateSnapshotPayload
		if err := msg.UnmarshalPayload(&p); err != nil {
			logger.Debug("bad snapshot", "error", err)
			return false
		}

		snap := state.Snapshot{Version: p.Version, State: p.State}

		if !c.install(snap) {
			logger.Debug("stale snapshot dropped", "version", snap.Version)
			return false
		}

		c.emit(SnapshotMsg{snap: snap})

	case ws.TypeActionRequest:
		var p ws.ActionRequestPayload
		if err := msg.UnmarshalPayload(&p); err != nil {
			return false
		}

		c.emit(ActionRequestMsg{req: bridge.Request{
			ID:        p.ID,
			SessionID: msg.SessionID,
			Name:      p.Name,
			Args:      p.Args,
			IssuedAt:  msg.Timestamp,
		}})

	case ws.TypeActionResolved:
		var p ws.ActionResolvedPayload
		if err := msg.UnmarshalPayload(&p); err != nil {
			return false
		}

		c.emit(ActionResolvedMsg{id: p.ID, decision: p.Decision, closed: p.Closed})

	case ws.TypeError:
		var p errors.ErrorResponse
		if err := msg.UnmarshalPayload(&p); err != nil {
			return false
		}

		c.emit(ServerErrorMsg{code: p.Error, message: p.Message})

	case ws.TypeServerShutdown:
		var p ws.ServerShutdownPayload
		msg.UnmarshalPayload(&p) //nolint:errcheck,gosec

		c.emit(DisconnectedMsg{reason: "server shutting down: " + p.Reason})
		return true

	case ws.TypeSessionEnded:
		var p ws.SessionEndedPayload
		msg.UnmarshalPayload(&p) //nolint:errcheck,gosec

		c.emit(DisconnectedMsg{reason: "session ended: " + p.Reason})
		return true
	}

	return false
}

func (c *WSClient) emit(msg tea.Msg) {
	select {
	case c.events <- msg:
	case <-c.done:
	}
}

// sends periodic pings to keep the connection alive
func (c *WSClient) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()

			if err != nil {
				return
			}
		}
	}
}

// closes the connection; safe to call more than once
func (c *WSClient) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.connected = false
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			c.writeMu.Lock()
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck,gosec
			c.writeMu.Unlock()
			conn.Close() //nolint:errcheck,gosec
		}

		close(c.done)
	})
}
