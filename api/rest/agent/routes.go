package agent

import (
	"github.com/gin-gonic/gin"

	agentcore "codeberg.org/notecanvas/server/internal/agent"
)

func RegisterRoutes(router *gin.RouterGroup, runner Runner) {
	agentsGroup := router.Group("/agents")
	{
		agentsGroup.POST("/:name/run", RunHandler(map[string]Runner{agentcore.Name: runner}))
	}
}
