package agent

import "codeberg.org/notecanvas/server/internal/llm"

type RunRequest struct {
	SessionID string        `json:"session_id" binding:"required"`
	Messages  []llm.Message `json:"messages" binding:"required"`
}
