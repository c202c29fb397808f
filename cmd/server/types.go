package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/api/rest/chat"
	"codeberg.org/notecanvas/server/internal/agent"
	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/buffer"
	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/sessions"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

// holds all dependencies and state for the API server
type Server struct {
	config     *config.Config
	snapshots  buffer.SnapshotStore
	flusher    *buffer.Flusher
	sessionMgr *sessions.Manager
	bridge     *bridge.Bridge
	services   *Services
	hub        *ws.Hub
	router     *gin.Engine
}

// holds the model-facing services (agent, model selector, chat bridge)
type Services struct {
	Agent    *agent.Agent
	Selector *llm.Selector
	Chat     *chat.Proxy
}
