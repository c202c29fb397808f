package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "notecanvas"
	serviceVersion = "1.0.0"
)

// counts live sessions
type SessionCounter interface {
	GetSessionCount() int
}

// Handler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: serviceVersion,
		}

		if sessions != nil {
			resp.Sessions = sessions.GetSessionCount()
		}

		c.JSON(http.StatusOK, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
