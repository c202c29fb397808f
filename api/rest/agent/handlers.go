package agent

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	agentcore "codeberg.org/notecanvas/server/internal/agent"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/sessions"
)

// runs one agent turn against a session
type Runner interface {
	Run(ctx context.Context, req agentcore.RunRequest) (*agentcore.RunResponse, error)
}

// RunHandler godoc
// @Summary Run a remote agent turn
// @Description Runs the named agent against the session state. Delete proposals wait for a decision on the canvas.
// @Tags agents
// @Accept json
// @Produce json
// @Param name path string true "Agent name" Enums(xiaohongshu_agent)
// @Param request body RunRequest true "Agent turn"
// @Success 200 {object} agentcore.RunResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/agents/{name}/run [post]
func RunHandler(agents map[string]Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		runner, exists := agents[c.Param("name")]
		if !exists {
			errors.NotFound(c, "agent")
			return
		}

		var req RunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		resp, err := runner.Run(c.Request.Context(), agentcore.RunRequest{
			SessionID: req.SessionID,
			Messages:  req.Messages,
		})
		if err != nil {
			writeRunError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func writeRunError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, agentcore.ErrMissingSession), stderrors.Is(err, agentcore.ErrNoMessages):
		errors.ValidationError(c, err)
	case stderrors.Is(err, sessions.ErrSessionNotFound), stderrors.Is(err, sessions.ErrSessionExpired):
		errors.SessionNotFound(c)
	case stderrors.Is(err, agentcore.ErrRunInProgress):
		errors.Conflict(c, "agent is already working on this session")
	case stderrors.Is(err, llm.ErrInvalidConfiguration):
		errors.InvalidConfiguration(c, err)
	case llm.IsRoleCompatibilityError(err):
		errors.UpstreamValidation(c, err)
	default:
		errors.BadGateway(c, "agent run failed", err)
	}
}
