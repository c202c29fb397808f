package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// human answer to an action request
type Decision string

const (
	Yes Decision = "YES"
	No  Decision = "NO"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case Yes, No:
		return d, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// decided and closed requests kept per session so late responses still
// get ErrAlreadyDecided or ErrRequestClosed rather than ErrUnknownRequest
const maxResolvedPerSession = 32

type Status string

const (
	StatusPending Status = "pending"
	StatusDecided Status = "decided"
	StatusClosed  Status = "closed" // canceled by the agent or its session ended
)

var (
	ErrUnknownRequest  = errors.New("unknown action request")
	ErrAlreadyDecided  = errors.New("action request already decided")
	ErrRequestClosed   = errors.New("action request closed")
	ErrInvalidDecision = errors.New("decision must be YES or NO")
)

// an agent-proposed action awaiting a human decision
type Request struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	IssuedAt  time.Time       `json:"issued_at"`
}

// the outcome delivered to OnResolve hooks
type Resolution struct {
	RequestID string   `json:"id"`
	SessionID string   `json:"session_id"`
	Decision  Decision `json:"decision,omitempty"`
	Closed    bool     `json:"closed,omitempty"`
}

type entry struct {
	req         Request
	seq         uint64 // issue order, ties in IssuedAt are common
	resolvedSeq uint64 // set when decided or closed
	status      Status
	decision    Decision
	done        chan struct{}
}
