package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drover-dev/drover/internal/application/fleet/usecases"
	"github.com/drover-dev/drover/internal/shared/constants"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

type AuthenticateClientExecutor interface {
	Execute(ctx context.Context, cmd usecases.AuthenticateClientCommand) (*usecases.AuthenticateClientResult, error)
}

// ClientTokenMiddleware authenticates agent API requests by their bearer
// token and stores the resolved client identity in the request context.
type ClientTokenMiddleware struct {
	authenticateUC AuthenticateClientExecutor
	logger         logger.Interface
}

func NewClientTokenMiddleware(
	authenticateUC AuthenticateClientExecutor,
	logger logger.Interface,
) *ClientTokenMiddleware {
	return &ClientTokenMiddleware{
		authenticateUC: authenticateUC,
		logger:         logger,
	}
}

func (m *ClientTokenMiddleware) RequireClientToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Agents send X-Client-Token; Authorization: Bearer works too.
		token := c.GetHeader(constants.HeaderXClientToken)

		if token == "" {
			authHeader := c.GetHeader(constants.HeaderAuthorization)
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing client token")
			c.Abort()
			return
		}

		cmd := usecases.AuthenticateClientCommand{
			PlainToken: token,
			IPAddress:  c.ClientIP(),
		}

		result, err := m.authenticateUC.Execute(c.Request.Context(), cmd)
		if err != nil {
			m.logger.Warnw("client token authentication failed", "error", err, "ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid client token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyClientID, result.ClientID)
		c.Set(constants.ContextKeyClientSID, result.ClientSID)
		c.Set(constants.ContextKeyClientName, result.Name)
		c.Next()
	}
}
