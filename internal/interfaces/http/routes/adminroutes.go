package routes

import (
	"github.com/gin-gonic/gin"

	adminHandlers "github.com/drover-dev/drover/internal/interfaces/http/handlers/admin"
	"github.com/drover-dev/drover/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the operator-facing admin API.
type AdminRouteConfig struct {
	ClientHandler       *adminHandlers.ClientHandler
	VersionHandler      *adminHandlers.VersionHandler
	UpdateHandler       *adminHandlers.UpdateHandler
	AdminAuthMiddleware *middleware.AdminAuthMiddleware
}

// SetupAdminRoutes configures the /api/v1 admin routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	api := engine.Group("/api/v1")
	api.Use(cfg.AdminAuthMiddleware.RequireAdminToken())
	{
		clients := api.Group("/clients")
		{
			clients.POST("", cfg.ClientHandler.RegisterClient)
			clients.GET("", cfg.ClientHandler.ListClients)
			clients.GET("/:sid", cfg.ClientHandler.GetClient)
			clients.PUT("/:sid/config", cfg.ClientHandler.UpdateClientConfig)
			clients.POST("/:sid/token", cfg.ClientHandler.RegenerateToken)
			clients.DELETE("/:sid", cfg.ClientHandler.DeleteClient)

			clients.POST("/:sid/deploy", cfg.UpdateHandler.DeployVersion)
			clients.GET("/:sid/updates", cfg.UpdateHandler.ListClientUpdates)
		}

		versions := api.Group("/versions")
		{
			versions.POST("", cfg.VersionHandler.PublishVersion)
			versions.GET("", cfg.VersionHandler.ListVersions)
			versions.GET("/:version", cfg.VersionHandler.GetVersion)
			versions.GET("/:version/artifact", cfg.VersionHandler.DownloadArtifact)
			versions.POST("/:version/activate", cfg.VersionHandler.ActivateVersion)
			versions.POST("/:version/deactivate", cfg.VersionHandler.DeactivateVersion)
		}

		api.GET("/updates", cfg.UpdateHandler.ListUpdates)
	}
}
