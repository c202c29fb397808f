package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/buffer"
	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/sessions"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

const (
	// how often dirty snapshots are written to the snapshot store
	bufferFlushInterval = 5 * time.Second

	// how often the session manager sweeps expired sessions
	cleanupCheckInterval = time.Minute
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	snapshots, err := newSnapshotStore(cfg)
	if err != nil {
		return nil, err
	}

	flusher := buffer.NewFlusher(snapshots, bufferFlushInterval)
	sessionMgr := sessions.NewManager(cfg.SessionTTL, snapshots, flusher)
	actionBridge := bridge.New()
	hub := ws.NewHub()

	// every live store broadcasts its snapshots to the session's canvases
	sessionMgr.OnRegister(func(session *sessions.Session) {
		hub.AttachStore(session.ID, session.Store)
	})

	sessionMgr.OnExpire(func(sessionID string) {
		hub.EndSession(sessionID, "session_expired")
		actionBridge.Forget(sessionID)
	})

	hub.AttachBridge(actionBridge)

	hub.RegisterHandler(ws.TypeStateReplace, ws.StateReplaceHandler(sessionMgr.Store))
	hub.RegisterHandler(ws.TypeActionResponse, ws.ActionResponseHandler(actionBridge))
	hub.RegisterHandler(ws.TypePing, ws.PingHandler())

	// a (re)connecting canvas gets the current snapshot and any open requests
	hub.OnClientRegistered(ws.SyncOnConnect(sessionMgr.Store, actionBridge))

	services := InitializeServices(cfg, sessionMgr, actionBridge)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		config:     cfg,
		snapshots:  snapshots,
		flusher:    flusher,
		sessionMgr: sessionMgr,
		bridge:     actionBridge,
		services:   services,
		hub:        hub,
		router:     router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		snapshots.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return server, nil
}

// redis when REDIS_URL is set, otherwise snapshots only survive in memory
func newSnapshotStore(cfg *config.Config) (buffer.SnapshotStore, error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, session snapshots will not survive a restart")
		return buffer.NewMemoryStore(cfg.SessionTTL), nil
	}

	store, err := buffer.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis snapshot store: %w", err)
	}

	return store, nil
}
