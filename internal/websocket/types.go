package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/state"
)

// message type constants for websocket communication
const (
	// is sent to a connecting client and after every replace of the session state
	TypeStateSnapshot = "state_snapshot"

	// is sent by a client carrying a whole new AgentState
	TypeStateReplace = "state_replace"

	// is sent when the agent asks for a human decision
	TypeActionRequest = "action_request"

	// is sent by a client with its YES/NO decision
	TypeActionResponse = "action_response"

	// is sent once a request is decided or closed; clients hide its buttons
	TypeActionResolved = "action_resolved"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"

	// is sent when the session expires or is deleted
	TypeSessionEnded = "session_ended"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 512 * 1024

	// state replaces allowed per client per second
	maxStateReplacesPerSecond = 10
)

// hub connection limit constants
const (
	maxConnectionsPerIP = 10
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	ClientID  string          `json:"-"` // internal only, not sent to clients
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// current value of the session state
type StateSnapshotPayload struct {
	Version uint64           `json:"version"`
	State   state.AgentState `json:"state"`
}

// a whole-state write from a client. BaseVersion is the snapshot version
// the client derived State from; it is informational only.
type StateReplacePayload struct {
	State       state.AgentState `json:"state"`
	BaseVersion uint64           `json:"base_version,omitempty"`
}

type ActionRequestPayload struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type ActionResponsePayload struct {
	ID       string          `json:"id"`
	Decision bridge.Decision `json:"decision"`
}

type ActionResolvedPayload struct {
	ID       string          `json:"id"`
	Decision bridge.Decision `json:"decision,omitempty"`
	Closed   bool            `json:"closed,omitempty"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

type SessionEndedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// StoreResolver finds the state store of a live session.
type StoreResolver func(ctx context.Context, sessionID string) (*state.Store, error)

// represents a websocket client connection
type Client struct {
	// unique identifier for this client
	ID string

	// session ID this client is connected to
	SessionID string

	// IP address of the client (for connection tracking)
	IPAddress string

	conn *websocket.Conn
	hub  *Hub

	// buffered channel of outbound messages
	send chan []byte

	mu     sync.RWMutex
	closed bool

	// sliding window for state_replace rate limiting
	replaceTimestamps []time.Time
}

// maintains the set of active clients and broadcasts messages to sessions
type Hub struct {
	// registered clients by session ID and client ID
	sessions map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// inbound client messages waiting for their handler
	Broadcast chan *Message

	mu sync.RWMutex

	// message handlers for different message types
	handlers map[string]MessageHandler

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per session for message ordering
	sessionSequences map[string]uint64

	// called after a client is registered (sends the initial snapshot)
	onClientRegistered func(client *Client)
}

// processes a specific message type
type MessageHandler func(hub *Hub, client *Client, msg *Message) error
