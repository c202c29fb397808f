package websocket

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/sessions"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     ws.CheckOrigin,
}

// WebSocketHandler godoc
// @Summary Connect a canvas
// @Description Upgrades to a websocket that streams state snapshots and action requests. Without session_id a new session is created.
// @Tags websocket
// @Param session_id query string false "Session ID"
// @Success 101
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/ws [get]
func WebSocketHandler(hub *ws.Hub, sessionMgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var session *sessions.Session

		if params.SessionID == "" {
			session = sessionMgr.CreateSession()
		} else {
			if !errors.IsValidUUID(params.SessionID) {
				errors.BadRequest(c, "invalid session_id format", nil)
				return
			}

			var err error
			session, err = sessionMgr.GetSession(ctx, params.SessionID)
			if err != nil {
				if stderrors.Is(err, sessions.ErrSessionNotFound) || stderrors.Is(err, sessions.ErrSessionExpired) {
					errors.SessionNotFound(c)
					return
				}

				errors.InternalError(c, "failed to load session", err)
				return
			}
		}

		sessionMgr.Touch(session.ID)

		ipAddress := c.ClientIP()
		if !hub.TrackIPConnection(ipAddress) {
			errors.TooManyRequests(c, "too many connections from this address")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.UntrackIPConnection(ipAddress)

			logger.ErrorErr(err, "failed to upgrade connection",
				"session_id", session.ID,
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(ws.GenerateClientID(), session.ID, ipAddress, conn, hub)

		logger.Info("websocket connected",
			"client_id", client.ID,
			"session_id", session.ID,
		)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
