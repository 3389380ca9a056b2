package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drover-dev/drover/internal/shared/constants"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

// AdminAuthMiddleware guards the admin API with a static bearer token.
// An empty configured token leaves the admin API open; that is the
// development posture and is logged loudly at startup.
type AdminAuthMiddleware struct {
	token  string
	logger logger.Interface
}

func NewAdminAuthMiddleware(token string, logger logger.Interface) *AdminAuthMiddleware {
	if token == "" {
		logger.Warnw("admin API token is not configured, admin routes are unauthenticated")
	}
	return &AdminAuthMiddleware{
		token:  token,
		logger: logger,
	}
}

func (m *AdminAuthMiddleware) RequireAdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.token == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader(constants.HeaderAuthorization)
		var token string
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}

		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing admin token")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			m.logger.Warnw("rejected admin request with bad token", "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
