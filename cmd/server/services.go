package main

import (
	"codeberg.org/notecanvas/server/api/rest/chat"
	"codeberg.org/notecanvas/server/internal/agent"
	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/sessions"
)

// creates the agent and the chat bridge on top of the session manager
func InitializeServices(cfg *config.Config, sessionMgr *sessions.Manager, actionBridge *bridge.Bridge) *Services {
	selector := llm.NewSelector()

	agentClient := agent.New(sessionMgr.Store, agent.Options{
		Selector:      selector,
		Fetcher:       agent.NewHTTPFetcher(),
		Bridge:        actionBridge,
		ActionTimeout: cfg.AgentActionTimeout,
	})

	return &Services{
		Agent:    agentClient,
		Selector: selector,
		Chat:     chat.NewProxy(cfg.RemoteActionURL, selector, sessionMgr.Store),
	}
}
