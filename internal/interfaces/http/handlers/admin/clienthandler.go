package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	fleetUsecases "github.com/drover-dev/drover/internal/application/fleet/usecases"
	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/id"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

// ClientHandler handles the client registry admin routes.
type ClientHandler struct {
	registerClientUC        registerClientUseCase
	listClientsUC           listClientsUseCase
	getClientUC             getClientUseCase
	updateClientConfigUC    updateClientConfigUseCase
	regenerateClientTokenUC regenerateClientTokenUseCase
	deleteClientUC          deleteClientUseCase
	logger                  logger.Interface
}

func NewClientHandler(
	registerClientUC registerClientUseCase,
	listClientsUC listClientsUseCase,
	getClientUC getClientUseCase,
	updateClientConfigUC updateClientConfigUseCase,
	regenerateClientTokenUC regenerateClientTokenUseCase,
	deleteClientUC deleteClientUseCase,
	logger logger.Interface,
) *ClientHandler {
	return &ClientHandler{
		registerClientUC:        registerClientUC,
		listClientsUC:           listClientsUC,
		getClientUC:             getClientUC,
		updateClientConfigUC:    updateClientConfigUC,
		regenerateClientTokenUC: regenerateClientTokenUC,
		deleteClientUC:          deleteClientUC,
		logger:                  logger,
	}
}

// RegisterClientRequest represents the payload for registering a client.
// Config is optional; omitted fields fall back to the fleet defaults.
type RegisterClientRequest struct {
	Name   string        `json:"name" binding:"required"`
	Config *fleet.Config `json:"config,omitempty"`
}

// RegisterClient handles POST /api/v1/clients
func (h *ClientHandler) RegisterClient(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for register client", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := fleetUsecases.RegisterClientCommand{
		Name:   req.Name,
		Config: req.Config,
	}
	result, err := h.registerClientUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Client registered successfully")
}

// ListClients handles GET /api/v1/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	pagination := utils.ParsePagination(c)

	query := fleetUsecases.ListClientsQuery{
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
		Name:     c.Query("name"),
		Status:   c.Query("status"),
	}
	result, err := h.listClientsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Clients, result.Total, result.Page, pagination.PageSize)
}

// GetClient handles GET /api/v1/clients/:sid
func (h *ClientHandler) GetClient(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	query := fleetUsecases.GetClientQuery{SID: sid}
	result, err := h.getClientUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdateClientConfig handles PUT /api/v1/clients/:sid/config
func (h *ClientHandler) UpdateClientConfig(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req fleet.Config
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update client config", "client_id", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := fleetUsecases.UpdateClientConfigCommand{
		SID:    sid,
		Config: req,
	}
	result, err := h.updateClientConfigUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Client config updated successfully", result)
}

// RegenerateToken handles POST /api/v1/clients/:sid/token
func (h *ClientHandler) RegenerateToken(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := fleetUsecases.RegenerateClientTokenCommand{SID: sid}
	result, err := h.regenerateClientTokenUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Client token regenerated successfully", result)
}

// DeleteClient handles DELETE /api/v1/clients/:sid
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixClient, "client")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := fleetUsecases.DeleteClientCommand{SID: sid}
	if err := h.deleteClientUC.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
