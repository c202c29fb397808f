package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	"codeberg.org/notecanvas/server/api/rest/agent"
	"codeberg.org/notecanvas/server/api/rest/chat"
	"codeberg.org/notecanvas/server/api/rest/health"
	"codeberg.org/notecanvas/server/api/rest/sessions"
	"codeberg.org/notecanvas/server/api/websocket"
	_ "codeberg.org/notecanvas/server/docs"
	"codeberg.org/notecanvas/server/internal/config"
	"codeberg.org/notecanvas/server/internal/errors"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config))
	router.GET("/health", health.Handler(server.sessionMgr))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)
		v1.GET("/docs/doc.json", DocsHandler)

		sessions.RegisterRoutes(v1, server.sessionMgr, server.bridge)
		agent.RegisterRoutes(v1, server.services.Agent)
		websocket.RegisterRoutes(v1, server.hub, server.sessionMgr)

		if err := chat.RegisterRoutes(v1, server.services.Chat, server.config.ChatRateLimit); err != nil {
			return err
		}
	}

	return nil
}

// allows the configured origins, or any origin outside production
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else if !cfg.IsProduction() {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}

// serves the registered OpenAPI document
func DocsHandler(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		errors.InternalError(c, "failed to read api docs", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
