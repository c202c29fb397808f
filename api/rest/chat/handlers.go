package chat

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/logger"
)

// Handler godoc
// @Summary Chat with the agent
// @Description Forwards to the named remote agent, or completes with the selected model when no agent is given.
// @Description A provider rejecting a message role is answered with {"success": true}.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body Request true "Chat request"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/chat [post]
func Handler(proxy *Proxy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if len(req.Messages) == 0 {
			errors.BadRequest(c, "at least one message is required", nil)
			return
		}

		var (
			resp *Response
			err  error
		)

		if req.Agent != "" {
			resp, err = proxy.Forward(c.Request.Context(), req)
		} else {
			resp, err = proxy.Complete(c.Request.Context(), req)
		}

		if err != nil {
			writeChatError(c, req, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func writeChatError(c *gin.Context, req Request, err error) {
	var remoteErr *RemoteError

	switch {
	case llm.IsRoleCompatibilityError(err):
		// harmless for the conversation, do not surface it
		logger.WarnErr(err, "role compatibility error suppressed",
			"agent", req.Agent,
			"session_id", req.SessionID,
		)
		c.JSON(http.StatusOK, Response{Success: true})

	case stderrors.Is(err, llm.ErrInvalidConfiguration):
		errors.InvalidConfiguration(c, err)

	case stderrors.As(err, &remoteErr) && remoteErr.Status < http.StatusInternalServerError:
		c.JSON(remoteErr.Status, remoteErr.Body)

	default:
		errors.BadGateway(c, "chat request failed", err)
	}
}
