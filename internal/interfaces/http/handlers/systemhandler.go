package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drover-dev/drover/internal/shared/version"
)

// SystemHandler serves the unauthenticated liveness endpoints.
type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// HealthCheck handles GET /health
func (h *SystemHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}

// Version handles GET /version with full build metadata
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    version.Version,
		"git_commit": version.GitCommit,
		"build_time": version.BuildTime,
	})
}
