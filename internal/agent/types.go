package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/state"
)

// Name is the agent id the chat bridge forwards to.
const Name = "xiaohongshu_agent"

// what the user asked for in the latest turn
type Intent string

const (
	IntentConversation    Intent = "conversation"
	IntentNoteCreation    Intent = "note_creation"
	IntentDeleteMaterials Intent = "delete_materials"
)

var (
	ErrNoMessages      = errors.New("at least one message is required")
	ErrMissingSession  = errors.New("session_id is required")
	ErrRunInProgress   = errors.New("agent is already running for this session")
	ErrMalformedOutput = errors.New("model returned malformed output")
)

// finds the state store of a live session
type StoreResolver func(ctx context.Context, sessionID string) (*state.Store, error)

// chooses a chat model for the model field of a state
type ModelSelector interface {
	Select(ctx context.Context, stateModel string) (llm.ChatModel, error)
}

// downloads the readable text of a reference material
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Options struct {
	Selector ModelSelector

	// nil skips the download step
	Fetcher Fetcher

	// nil disables delete proposals
	Bridge *bridge.Bridge

	// how long a proposal waits for a human decision
	ActionTimeout time.Duration
}

// Agent runs one note-writing turn at a time per session. It reads and
// writes the session state only through Snapshot and Replace.
type Agent struct {
	resolve       StoreResolver
	selector      ModelSelector
	fetcher       Fetcher
	bridge        *bridge.Bridge
	actionTimeout time.Duration

	running sync.Map // session id -> struct{}
}

type RunRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []llm.Message `json:"messages"`
}

type RunResponse struct {
	Reply    string       `json:"reply"`
	Intent   Intent       `json:"intent"`
	Provider llm.Provider `json:"provider"`
	Model    string       `json:"model"`
	Version  uint64       `json:"version"`
}

// router output
type routeDecision struct {
	Intent Intent   `json:"intent"`
	URLs   []string `json:"urls"`
}

// note creation output. null fields leave the state untouched.
type noteDraft struct {
	ProductInfo    *state.ProductInfo    `json:"product_info"`
	Note           *string               `json:"xiaohongshu_note"`
	Tags           []state.Tag           `json:"tags"`
	BloggerPersona *state.BloggerPersona `json:"blogger_persona"`
	Reply          string                `json:"reply"`
}
