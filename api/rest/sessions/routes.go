package sessions

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/sessions"
)

func RegisterRoutes(router *gin.RouterGroup, sessionMgr *sessions.Manager, actionBridge *bridge.Bridge) {
	sessionsGroup := router.Group("/sessions")
	{
		sessionsGroup.POST("", CreateSessionHandler(sessionMgr))
		sessionsGroup.DELETE("/:session_id", DeleteSessionHandler(sessionMgr))
		sessionsGroup.GET("/:session_id/state", GetStateHandler(sessionMgr))
		sessionsGroup.PUT("/:session_id/state", ReplaceStateHandler(sessionMgr))
		sessionsGroup.GET("/:session_id/note.html", NoteHTMLHandler(sessionMgr))
		sessionsGroup.GET("/:session_id/actions", ListActionsHandler(sessionMgr, actionBridge))
		sessionsGroup.POST("/:session_id/actions/:action_id", DecideActionHandler(sessionMgr, actionBridge))
	}
}
