package admin

import (
	"github.com/gin-gonic/gin"

	rolloutUsecases "github.com/drover-dev/drover/internal/application/rollout/usecases"
	"github.com/drover-dev/drover/internal/shared/id"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

// UpdateHandler handles the update ledger admin routes.
type UpdateHandler struct {
	deployVersionUC  deployVersionUseCase
	listUpdateLogsUC listUpdateLogsUseCase
	logger           logger.Interface
}

func NewUpdateHandler(
	deployVersionUC deployVersionUseCase,
	listUpdateLogsUC listUpdateLogsUseCase,
	logger logger.Interface,
) *UpdateHandler {
	return &UpdateHandler{
		deployVersionUC:  deployVersionUC,
		listUpdateLogsUC: listUpdateLogsUC,
		logger:           logger,
	}
}

// DeployVersionRequest represents the payload for targeting a client at a
// version. Supersede replaces a colliding open update instead of rejecting.
type DeployVersionRequest struct {
	Version   string `json:"version" binding:"required"`
	Supersede bool   `json:"supersede"`
}

// DeployVersion handles POST /api/v1/clients/:sid/deploy
func (h *UpdateHandler) DeployVersion(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req DeployVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for deploy version", "client_id", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := rolloutUsecases.DeployVersionCommand{
		ClientSID: sid,
		Version:   req.Version,
		Supersede: req.Supersede,
	}
	result, err := h.deployVersionUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Deploy accepted")
}

// ListClientUpdates handles GET /api/v1/clients/:sid/updates
func (h *UpdateHandler) ListClientUpdates(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.listUpdates(c, sid)
}

// ListUpdates handles GET /api/v1/updates
func (h *UpdateHandler) ListUpdates(c *gin.Context) {
	h.listUpdates(c, "")
}

func (h *UpdateHandler) listUpdates(c *gin.Context, clientSID string) {
	pagination := utils.ParsePagination(c)

	query := rolloutUsecases.ListUpdateLogsQuery{
		Page:      pagination.Page,
		PageSize:  pagination.PageSize,
		Status:    c.Query("status"),
		ClientSID: clientSID,
	}
	result, err := h.listUpdateLogsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Updates, result.Total, result.Page, pagination.PageSize)
}
