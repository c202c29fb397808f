package chat

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/notecanvas/server/internal/errors"
)

// RegisterRoutes mounts the chat bridge behind a per-IP rate limit given
// in limiter's "<limit>-<period>" format, e.g. "20-M".
func RegisterRoutes(router *gin.RouterGroup, proxy *Proxy, rateLimit string) error {
	rate, err := limiter.NewRateFromFormatted(rateLimit)
	if err != nil {
		return fmt.Errorf("invalid chat rate limit %q: %w", rateLimit, err)
	}

	limit := mgin.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "too many chat requests, slow down")
		}),
	)

	router.POST("/chat", limit, Handler(proxy))

	return nil
}
