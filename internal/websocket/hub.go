package websocket

import (
	"time"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
)

func NewHub() *Hub {
	return &Hub{
		sessions:         make(map[string]map[string]*Client),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
		Broadcast:        make(chan *Message, 256),
		handlers:         make(map[string]MessageHandler),
		shutdown:         make(chan struct{}),
		ipConnections:    make(map[string]int),
		sessionSequences: make(map[string]uint64),
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// sets callback to be called after a client is registered
func (h *Hub) OnClientRegistered(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientRegistered = callback
}

// starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.handleMessage(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.SessionID] == nil {
		h.sessions[client.SessionID] = make(map[string]*Client)
	}

	h.sessions[client.SessionID][client.ID] = client

	logger.Info("client registered",
		"client_id", client.ID,
		"session_id", client.SessionID,
	)

	if h.onClientRegistered != nil {
		go h.onClientRegistered(client)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionClients, exists := h.sessions[client.SessionID]
	if !exists {
		return
	}

	if _, exists := sessionClients[client.ID]; !exists {
		return
	}

	delete(sessionClients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	logger.Info("client unregistered",
		"client_id", client.ID,
		"session_id", client.SessionID,
	)

	if len(sessionClients) == 0 {
		delete(h.sessions, client.SessionID)
		delete(h.sessionSequences, client.SessionID)

		logger.Debug("session has no more clients",
			"session_id", client.SessionID,
		)
	}
}

// dispatches an incoming message to its handler
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()

	sender := h.sessions[msg.SessionID][msg.ClientID]
	handler, exists := h.handlers[msg.Type]

	h.mu.RUnlock()

	if sender == nil {
		logger.Warn("sender client not found for message",
			"client_id", msg.ClientID,
			"session_id", msg.SessionID,
			"message_type", msg.Type,
		)
		return
	}

	if !exists {
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
			"session_id", msg.SessionID,
		)

		sender.SendError("bad_request", "unsupported message type", "message type not recognized")
		return
	}

	// handlers may touch the store or the bridge, keep them off the hub loop
	go func() {
		if err := handler(h, sender, msg); err != nil {
			logger.WarnErr(err, "handler error",
				"message_type", msg.Type,
				"client_id", sender.ID,
				"session_id", msg.SessionID,
			)
		}
	}()
}

// sends a message to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, msg *Message, excludeClientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastToSession(sessionID, msg, excludeClientID)
}

// must be called with lock held
func (h *Hub) broadcastToSession(sessionID string, msg *Message, excludeClientID string) {
	sessionClients, exists := h.sessions[sessionID]
	if !exists {
		return
	}

	h.sessionSequences[sessionID]++
	msg.Sequence = h.sessionSequences[sessionID]

	for clientID, client := range sessionClients {
		if clientID == excludeClientID {
			continue
		}

		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send message to client",
				"client_id", clientID,
				"session_id", sessionID,
			)
		}
	}
}

// broadcasts every replace of the store as a state_snapshot
func (h *Hub) AttachStore(sessionID string, store *state.Store) {
	store.OnReplace(func(snap state.Snapshot) {
		h.BroadcastSnapshot(sessionID, snap)
	})
}

func (h *Hub) BroadcastSnapshot(sessionID string, snap state.Snapshot) {
	msg, err := NewMessage(TypeStateSnapshot, sessionID, StateSnapshotPayload{
		Version: snap.Version,
		State:   snap.State,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to build snapshot message", "session_id", sessionID)
		return
	}

	h.BroadcastToSession(sessionID, msg, "")
}

// forwards issued and resolved action requests to the owning session
func (h *Hub) AttachBridge(b *bridge.Bridge) {
	b.OnIssue(func(req bridge.Request) {
		msg, err := NewMessage(TypeActionRequest, req.SessionID, actionRequestPayload(req))
		if err != nil {
			logger.ErrorErr(err, "failed to build action request message", "request_id", req.ID)
			return
		}

		h.BroadcastToSession(req.SessionID, msg, "")
	})

	b.OnResolve(func(res bridge.Resolution) {
		msg, err := NewMessage(TypeActionResolved, res.SessionID, ActionResolvedPayload{
			ID:       res.RequestID,
			Decision: res.Decision,
			Closed:   res.Closed,
		})
		if err != nil {
			logger.ErrorErr(err, "failed to build action resolved message", "request_id", res.RequestID)
			return
		}

		h.BroadcastToSession(res.SessionID, msg, "")
	})
}

func actionRequestPayload(req bridge.Request) ActionRequestPayload {
	return ActionRequestPayload{
		ID:   req.ID,
		Name: req.Name,
		Args: req.Args,
	}
}

// returns all clients in a session
func (h *Hub) GetSessionClients(sessionID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessionClients, exists := h.sessions[sessionID]
	if !exists {
		return []*Client{}
	}

	clients := make([]*Client, 0, len(sessionClients))

	for _, client := range sessionClients {
		clients = append(clients, client)
	}

	return clients
}

// returns the number of clients in a session
func (h *Hub) GetClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) IsSessionActive(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}

func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for sessionID, sessionClients := range h.sessions {
		shutdownMsg, err := NewMessage(TypeServerShutdown, sessionID, ServerShutdownPayload{
			Reason: "server is shutting down",
		})
		if err != nil {
			continue
		}

		for _, client := range sessionClients {
			if err := client.Send(shutdownMsg); err != nil {
				logger.Debug("failed to send shutdown notification",
					"client_id", client.ID,
					"session_id", sessionID,
				)
			}
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	time.Sleep(500 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for _, sessionClients := range h.sessions {
		for _, client := range sessionClients {
			client.Close()
		}
	}

	h.sessions = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
	h.sessionSequences = make(map[string]uint64)
}

// reserves a connection slot for ipAddress, false when the IP is at its limit
func (h *Hub) TrackIPConnection(ipAddress string) bool {
	if ipAddress == "" {
		return true
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false
	}

	h.ipConnections[ipAddress]++

	return true
}

// releases a slot taken by TrackIPConnection when the connection never registered
func (h *Hub) UntrackIPConnection(ipAddress string) {
	if ipAddress == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.ipConnections[ipAddress]--

	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}

// notifies and disconnects every client of an ended session
func (h *Hub) EndSession(sessionID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionClients, exists := h.sessions[sessionID]
	if !exists {
		return
	}

	msg, err := NewMessage(TypeSessionEnded, sessionID, SessionEndedPayload{Reason: reason})
	if err == nil {
		h.broadcastToSession(sessionID, msg, "")
	}

	for _, client := range sessionClients {
		client.Close()

		if client.IPAddress != "" {
			h.ipConnections[client.IPAddress]--

			if h.ipConnections[client.IPAddress] <= 0 {
				delete(h.ipConnections, client.IPAddress)
			}
		}
	}

	delete(h.sessions, sessionID)
	delete(h.sessionSequences, sessionID)

	logger.Info("session ended",
		"session_id", sessionID,
		"reason", reason,
		"clients_disconnected", len(sessionClients),
	)
}
