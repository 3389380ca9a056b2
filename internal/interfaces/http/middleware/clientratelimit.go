package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drover-dev/drover/internal/infrastructure/ratelimit"
	"github.com/drover-dev/drover/internal/shared/constants"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

// ClientRateLimitMiddleware limits authenticated agent traffic per client
// SID. It complements the per-IP limiter: many agents can share a NAT
// address, and one agent can hop addresses, so the post-auth identity is
// the fair unit to meter.
type ClientRateLimitMiddleware struct {
	limiter ratelimit.RateLimiter
	limit   int
	window  time.Duration
	logger  logger.Interface
}

func NewClientRateLimitMiddleware(
	limiter ratelimit.RateLimiter,
	limit int,
	window time.Duration,
	logger logger.Interface,
) *ClientRateLimitMiddleware {
	return &ClientRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

// LimitByClient returns a middleware for routes mounted after client token
// auth. Limiter outages fail open so a redis blip never blacks out the
// fleet's check-ins.
func (m *ClientRateLimitMiddleware) LimitByClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientSID := c.GetString(constants.ContextKeyClientSID)
		if clientSID == "" {
			m.logger.Warnw("client SID not found in context", "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusUnauthorized, "client authentication required")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		key := "client:" + clientSID

		allowed, err := m.limiter.Allow(ctx, key)
		if err != nil {
			m.logger.Warnw("rate limit check failed", "error", err, "client_id", clientSID)
			c.Next()
			return
		}

		remaining, err := m.limiter.Remaining(ctx, key)
		if err != nil {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(m.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			m.logger.Warnw("client rate limit exceeded",
				"client_id", clientSID,
				"limit", m.limit,
			)

			c.Header("Retry-After", strconv.FormatInt(int64(m.window.Seconds()), 10))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
