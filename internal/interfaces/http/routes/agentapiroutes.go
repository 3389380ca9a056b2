package routes

import (
	"github.com/gin-gonic/gin"

	adminHandlers "github.com/drover-dev/drover/internal/interfaces/http/handlers/admin"
	agentHandlers "github.com/drover-dev/drover/internal/interfaces/http/handlers/agent"
	"github.com/drover-dev/drover/internal/interfaces/http/middleware"
)

// AgentAPIRouteConfig holds dependencies for the agent polling API. Both
// limiter fields are nil when redis is disabled.
type AgentAPIRouteConfig struct {
	AgentHandler              *agentHandlers.AgentHandler
	VersionHandler            *adminHandlers.VersionHandler
	ClientTokenMiddleware     *middleware.ClientTokenMiddleware
	RateLimiter               *middleware.RateLimiter
	ClientRateLimitMiddleware *middleware.ClientRateLimitMiddleware
}

// SetupAgentAPIRoutes configures the /agent/v1 routes. The IP limiter runs
// before token auth, the per-client limiter after it.
func SetupAgentAPIRoutes(engine *gin.Engine, cfg *AgentAPIRouteConfig) {
	agentAPI := engine.Group("/agent/v1")
	if cfg.RateLimiter != nil {
		agentAPI.Use(cfg.RateLimiter.Limit())
	}
	agentAPI.Use(cfg.ClientTokenMiddleware.RequireClientToken())
	if cfg.ClientRateLimitMiddleware != nil {
		agentAPI.Use(cfg.ClientRateLimitMiddleware.LimitByClient())
	}
	{
		agentAPI.POST("/checkin", cfg.AgentHandler.Checkin)
		agentAPI.POST("/result", cfg.AgentHandler.ReportResult)
		agentAPI.GET("/artifacts/:version", cfg.VersionHandler.DownloadArtifact)
	}
}
