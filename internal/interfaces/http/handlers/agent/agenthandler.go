// Package agent exposes the check-in surface that fleet agents poll.
// Client identity comes from the token middleware, never from request
// bodies.
package agent

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	rolloutUsecases "github.com/drover-dev/drover/internal/application/rollout/usecases"
	"github.com/drover-dev/drover/internal/shared/constants"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

type checkinUseCase interface {
	Execute(ctx context.Context, cmd rolloutUsecases.CheckinCommand) (*rolloutUsecases.CheckinResult, error)
}

type reportUpdateResultUseCase interface {
	Execute(ctx context.Context, cmd rolloutUsecases.ReportUpdateResultCommand) (*rolloutUsecases.OutcomeResult, error)
}

// AgentHandler handles the authenticated agent API routes.
type AgentHandler struct {
	checkinUC checkinUseCase
	reportUC  reportUpdateResultUseCase
	logger    logger.Interface
}

func NewAgentHandler(
	checkinUC checkinUseCase,
	reportUC reportUpdateResultUseCase,
	logger logger.Interface,
) *AgentHandler {
	return &AgentHandler{
		checkinUC: checkinUC,
		reportUC:  reportUC,
		logger:    logger,
	}
}

// CheckinRequest represents an agent poll. Both fields are optional; status
// is free-form and only kept in the live status store.
type CheckinRequest struct {
	CurrentVersion string `json:"current_version"`
	Status         string `json:"status"`
}

// ReportResultRequest represents an agent's terminal outcome for the update
// it was handed. Version is optional but lets the server reject reports
// aimed at a different update.
type ReportResultRequest struct {
	Success      bool   `json:"success"`
	Version      string `json:"version"`
	ErrorMessage string `json:"error_message"`
}

// Checkin handles POST /agent/v1/checkin
func (h *AgentHandler) Checkin(c *gin.Context) {
	clientID, clientSID, ok := clientIdentity(c, h.logger)
	if !ok {
		return
	}

	// An empty body is a valid poll; binding errors other than EOF are not.
	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.logger.Warnw("invalid request body for checkin", "client_id", clientSID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := rolloutUsecases.CheckinCommand{
		ClientID:       clientID,
		ClientSID:      clientSID,
		CurrentVersion: req.CurrentVersion,
		Status:         req.Status,
	}
	result, err := h.checkinUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ReportResult handles POST /agent/v1/result
func (h *AgentHandler) ReportResult(c *gin.Context) {
	clientID, clientSID, ok := clientIdentity(c, h.logger)
	if !ok {
		return
	}

	var req ReportResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for report result", "client_id", clientSID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := rolloutUsecases.ReportUpdateResultCommand{
		ClientID:     clientID,
		ClientSID:    clientSID,
		Success:      req.Success,
		Version:      req.Version,
		ErrorMessage: req.ErrorMessage,
	}
	result, err := h.reportUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// clientIdentity reads the identity the token middleware stored. A miss
// means the route was mounted without the middleware.
func clientIdentity(c *gin.Context, log logger.Interface) (uint, string, bool) {
	idVal, exists := c.Get(constants.ContextKeyClientID)
	if !exists {
		log.Errorw("client_id not found in context", "path", c.Request.URL.Path)
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("client authentication required"))
		c.Abort()
		return 0, "", false
	}

	clientID, ok := idVal.(uint)
	if !ok {
		log.Errorw("invalid client_id type in context", "client_id", idVal)
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("client authentication required"))
		c.Abort()
		return 0, "", false
	}

	return clientID, c.GetString(constants.ContextKeyClientSID), true
}
