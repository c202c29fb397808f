package websocket

type ConnectParams struct {
	// empty starts a new session
	SessionID string `form:"session_id"`
}
