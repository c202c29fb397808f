package chat

import (
	"fmt"

	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
)

type Request struct {
	// remote agent to forward to; empty completes directly with the model selector
	Agent     string        `json:"agent,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	Model     string        `json:"model,omitempty"`
	Messages  []llm.Message `json:"messages" binding:"required"`
}

type Response struct {
	Success  bool         `json:"success"`
	Reply    string       `json:"reply,omitempty"`
	Intent   string       `json:"intent,omitempty"`
	Provider llm.Provider `json:"provider,omitempty"`
	Model    string       `json:"model,omitempty"`
	Version  uint64       `json:"version,omitempty"`
	Usage    *llm.Usage   `json:"usage,omitempty"`
}

// body sent to the remote agent endpoint
type remoteRunRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []llm.Message `json:"messages"`
}

type remoteRunResponse struct {
	Reply    string       `json:"reply"`
	Intent   string       `json:"intent"`
	Provider llm.Provider `json:"provider"`
	Model    string       `json:"model"`
	Version  uint64       `json:"version"`
}

// RemoteError is a non-2xx answer of the remote agent.
type RemoteError struct {
	Status int
	Body   errors.ErrorResponse
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote agent returned %d: %s: %s", e.Status, e.Body.Error, e.Body.Message)
}

// lets llm.IsRoleCompatibilityError and errors.Is see through the hop
func (e *RemoteError) Is(target error) bool {
	switch target {
	case llm.ErrUpstreamValidation:
		return e.Body.Error == errors.CodeUpstreamValidation
	case llm.ErrInvalidConfiguration:
		return e.Body.Error == errors.CodeInvalidConfiguration
	}

	return false
}
