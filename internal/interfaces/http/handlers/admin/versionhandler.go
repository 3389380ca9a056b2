package admin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	releaseUsecases "github.com/drover-dev/drover/internal/application/release/usecases"
	"github.com/drover-dev/drover/internal/shared/constants"
	"github.com/drover-dev/drover/internal/shared/logger"
	"github.com/drover-dev/drover/internal/shared/utils"
)

// VersionHandler handles the version registry admin routes.
type VersionHandler struct {
	publishVersionUC   publishVersionUseCase
	listVersionsUC     listVersionsUseCase
	getVersionUC       getVersionUseCase
	setVersionActiveUC setVersionActiveUseCase
	downloadArtifactUC downloadArtifactUseCase
	logger             logger.Interface
}

func NewVersionHandler(
	publishVersionUC publishVersionUseCase,
	listVersionsUC listVersionsUseCase,
	getVersionUC getVersionUseCase,
	setVersionActiveUC setVersionActiveUseCase,
	downloadArtifactUC downloadArtifactUseCase,
	logger logger.Interface,
) *VersionHandler {
	return &VersionHandler{
		publishVersionUC:   publishVersionUC,
		listVersionsUC:     listVersionsUC,
		getVersionUC:       getVersionUC,
		setVersionActiveUC: setVersionActiveUC,
		downloadArtifactUC: downloadArtifactUC,
		logger:             logger,
	}
}

// PublishVersion handles POST /api/v1/versions. The request is multipart:
// form fields "version", "release_notes", optional declared "checksum" and
// "size", and the artifact bytes in the "artifact" file part.
func (h *VersionHandler) PublishVersion(c *gin.Context) {
	version := c.PostForm("version")

	var declaredSize int64
	if raw := c.PostForm("size"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "size must be an integer")
			return
		}
		declaredSize = parsed
	}

	file, header, err := c.Request.FormFile("artifact")
	if err != nil {
		h.logger.Warnw("missing artifact file part", "version", version, "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "artifact file is required")
		return
	}
	defer file.Close()

	cmd := releaseUsecases.PublishVersionCommand{
		Version:          version,
		ReleaseNotes:     c.PostForm("release_notes"),
		Filename:         header.Filename,
		Artifact:         file,
		DeclaredChecksum: c.PostForm("checksum"),
		DeclaredSize:     declaredSize,
	}
	result, err := h.publishVersionUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Version published successfully")
}

// ListVersions handles GET /api/v1/versions
func (h *VersionHandler) ListVersions(c *gin.Context) {
	pagination := utils.ParsePagination(c)

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))

	query := releaseUsecases.ListVersionsQuery{
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		ActiveOnly: activeOnly,
	}
	result, err := h.listVersionsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Versions, result.Total, result.Page, pagination.PageSize)
}

// GetVersion handles GET /api/v1/versions/:version
func (h *VersionHandler) GetVersion(c *gin.Context) {
	query := releaseUsecases.GetVersionQuery{Version: c.Param("version")}
	result, err := h.getVersionUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ActivateVersion handles POST /api/v1/versions/:version/activate
func (h *VersionHandler) ActivateVersion(c *gin.Context) {
	h.setActive(c, true, "Version activated successfully")
}

// DeactivateVersion handles POST /api/v1/versions/:version/deactivate
func (h *VersionHandler) DeactivateVersion(c *gin.Context) {
	h.setActive(c, false, "Version deactivated successfully")
}

func (h *VersionHandler) setActive(c *gin.Context, active bool, message string) {
	cmd := releaseUsecases.SetVersionActiveCommand{
		Version: c.Param("version"),
		Active:  active,
	}
	result, err := h.setVersionActiveUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, result)
}

// DownloadArtifact streams the stored artifact bytes. Mounted on both the
// admin API (GET /api/v1/versions/:version/artifact) and the agent API
// (GET /agent/v1/artifacts/:version).
func (h *VersionHandler) DownloadArtifact(c *gin.Context) {
	query := releaseUsecases.DownloadArtifactQuery{Version: c.Param("version")}
	result, err := h.downloadArtifactUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer result.Content.Close()

	extraHeaders := map[string]string{
		"Content-Disposition":          fmt.Sprintf("attachment; filename=%q", result.Filename),
		constants.HeaderChecksumSHA256: result.Checksum,
	}
	c.DataFromReader(http.StatusOK, result.Size, constants.ContentTypeOctetStream, result.Content, extraHeaders)
}
