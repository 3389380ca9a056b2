package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	fleetUsecases "github.com/drover-dev/drover/internal/application/fleet/usecases"
	releaseUsecases "github.com/drover-dev/drover/internal/application/release/usecases"
	rolloutUsecases "github.com/drover-dev/drover/internal/application/rollout/usecases"
	"github.com/drover-dev/drover/internal/infrastructure/artifact"
	"github.com/drover-dev/drover/internal/infrastructure/cache"
	"github.com/drover-dev/drover/internal/infrastructure/config"
	"github.com/drover-dev/drover/internal/infrastructure/ratelimit"
	"github.com/drover-dev/drover/internal/infrastructure/repository"
	"github.com/drover-dev/drover/internal/interfaces/http/handlers"
	adminHandlers "github.com/drover-dev/drover/internal/interfaces/http/handlers/admin"
	agentHandlers "github.com/drover-dev/drover/internal/interfaces/http/handlers/agent"
	"github.com/drover-dev/drover/internal/interfaces/http/middleware"
	"github.com/drover-dev/drover/internal/interfaces/http/routes"
	"github.com/drover-dev/drover/internal/shared/db"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// Router wires repositories, use cases, handlers and middleware into a gin
// engine.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Interface

	clientHandler  *adminHandlers.ClientHandler
	versionHandler *adminHandlers.VersionHandler
	updateHandler  *adminHandlers.UpdateHandler
	agentHandler   *agentHandlers.AgentHandler
	systemHandler  *handlers.SystemHandler

	adminAuthMiddleware       *middleware.AdminAuthMiddleware
	clientTokenMiddleware     *middleware.ClientTokenMiddleware
	rateLimiter               *middleware.RateLimiter
	clientRateLimitMiddleware *middleware.ClientRateLimitMiddleware
}

// NewRouter creates a Router with all dependencies wired together.
// redisClient may be nil; live agent status then degrades to a no-op store
// and the agent API runs without rate limiting.
func NewRouter(gormDB *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	// Infrastructure
	clientRepo := repository.NewClientRepository(gormDB, log)
	versionRepo := repository.NewVersionRepository(gormDB, log)
	updateLogRepo := repository.NewUpdateLogRepository(gormDB, log)
	txManager := db.NewTransactionManager(gormDB)
	artifactStore := artifact.NewFilesystemStore(cfg.Artifact.Dir, log)

	var liveStatus cache.LiveStatusStore
	var rateLimiter *middleware.RateLimiter
	var clientRateLimiter *middleware.ClientRateLimitMiddleware
	if redisClient != nil {
		liveStatus = cache.NewRedisLiveStatusStore(redisClient, cfg.Fleet.StatusTTL())
		if cfg.RateLimit.Enabled {
			rateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window())
			clientRateLimiter = middleware.NewClientRateLimitMiddleware(
				ratelimit.NewRedisRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window()),
				cfg.RateLimit.Requests,
				cfg.RateLimit.Window(),
				log,
			)
		}
	} else {
		liveStatus = cache.NewNoopLiveStatusStore()
	}

	offlineAfter := cfg.Fleet.OfflineAfter()

	// Release use cases
	publishVersionUC := releaseUsecases.NewPublishVersionUseCase(versionRepo, artifactStore, log)
	listVersionsUC := releaseUsecases.NewListVersionsUseCase(versionRepo, log)
	getVersionUC := releaseUsecases.NewGetVersionUseCase(versionRepo, log)
	setVersionActiveUC := releaseUsecases.NewSetVersionActiveUseCase(versionRepo, log)
	downloadArtifactUC := releaseUsecases.NewDownloadArtifactUseCase(versionRepo, artifactStore, log)

	// Fleet use cases
	registerClientUC := fleetUsecases.NewRegisterClientUseCase(clientRepo, log)
	listClientsUC := fleetUsecases.NewListClientsUseCase(clientRepo, updateLogRepo, offlineAfter, log)
	getClientUC := fleetUsecases.NewGetClientUseCase(clientRepo, updateLogRepo, liveStatus, offlineAfter, log)
	updateClientConfigUC := fleetUsecases.NewUpdateClientConfigUseCase(clientRepo, txManager, log)
	regenerateClientTokenUC := fleetUsecases.NewRegenerateClientTokenUseCase(clientRepo, txManager, log)
	deleteClientUC := fleetUsecases.NewDeleteClientUseCase(clientRepo, log)
	authenticateClientUC := fleetUsecases.NewAuthenticateClientUseCase(clientRepo, log)

	// Rollout use cases
	deployVersionUC := rolloutUsecases.NewDeployVersionUseCase(clientRepo, versionRepo, updateLogRepo, txManager, log)
	checkinUC := rolloutUsecases.NewCheckinUseCase(clientRepo, versionRepo, updateLogRepo, liveStatus, txManager, log)
	reportUpdateResultUC := rolloutUsecases.NewReportUpdateResultUseCase(clientRepo, updateLogRepo, txManager, log)
	listUpdateLogsUC := rolloutUsecases.NewListUpdateLogsUseCase(updateLogRepo, clientRepo, log)

	return &Router{
		engine: gin.New(),
		cfg:    cfg,
		log:    log,

		clientHandler: adminHandlers.NewClientHandler(
			registerClientUC,
			listClientsUC,
			getClientUC,
			updateClientConfigUC,
			regenerateClientTokenUC,
			deleteClientUC,
			log,
		),
		versionHandler: adminHandlers.NewVersionHandler(
			publishVersionUC,
			listVersionsUC,
			getVersionUC,
			setVersionActiveUC,
			downloadArtifactUC,
			log,
		),
		updateHandler: adminHandlers.NewUpdateHandler(
			deployVersionUC,
			listUpdateLogsUC,
			log,
		),
		agentHandler:  agentHandlers.NewAgentHandler(checkinUC, reportUpdateResultUC, log),
		systemHandler: handlers.NewSystemHandler(),

		adminAuthMiddleware:       middleware.NewAdminAuthMiddleware(cfg.Server.AdminToken, log),
		clientTokenMiddleware:     middleware.NewClientTokenMiddleware(authenticateClientUC, log),
		rateLimiter:               rateLimiter,
		clientRateLimitMiddleware: clientRateLimiter,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.SecurityHeaders())
	if len(r.cfg.Server.AllowedOrigins) > 0 {
		r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	}

	r.engine.GET("/health", r.systemHandler.HealthCheck)
	r.engine.GET("/version", r.systemHandler.Version)

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		ClientHandler:       r.clientHandler,
		VersionHandler:      r.versionHandler,
		UpdateHandler:       r.updateHandler,
		AdminAuthMiddleware: r.adminAuthMiddleware,
	})

	routes.SetupAgentAPIRoutes(r.engine, &routes.AgentAPIRouteConfig{
		AgentHandler:              r.agentHandler,
		VersionHandler:            r.versionHandler,
		ClientTokenMiddleware:     r.clientTokenMiddleware,
		RateLimiter:               r.rateLimiter,
		ClientRateLimitMiddleware: r.clientRateLimitMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
