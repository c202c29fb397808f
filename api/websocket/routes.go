package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/internal/sessions"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, sessionMgr *sessions.Manager) {
	router.GET("/ws", WebSocketHandler(hub, sessionMgr))
}
