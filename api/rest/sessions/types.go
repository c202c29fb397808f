package sessions

import (
	"encoding/json"
	"time"

	"codeberg.org/notecanvas/server/internal/state"
)

type SessionResponse struct {
	SessionID string           `json:"session_id"`
	Version   uint64           `json:"version"`
	State     state.AgentState `json:"state"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type StateResponse struct {
	Version uint64           `json:"version"`
	State   state.AgentState `json:"state"`
}

// whole-state replacement. BaseVersion is informational; the last write wins.
type ReplaceStateRequest struct {
	State       *state.AgentState `json:"state" binding:"required"`
	BaseVersion uint64            `json:"base_version,omitempty"`
}

// a pending action request as the canvas shows it
type ActionView struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Args      json.RawMessage           `json:"args"`
	IssuedAt  time.Time                 `json:"issued_at"`
	Materials []state.ReferenceMaterial `json:"materials,omitempty"`
	Available bool                      `json:"available"`
}

type ActionsResponse struct {
	Actions []ActionView `json:"actions"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type DecisionResponse struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
}
