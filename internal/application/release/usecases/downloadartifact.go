package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/infrastructure/artifact"
	apperrors "github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// DownloadArtifactQuery represents the input for downloading an artifact.
type DownloadArtifactQuery struct {
	Version string
}

// DownloadArtifactResult carries the artifact stream and the metadata the
// transport layer serves alongside it. The caller must close Content.
type DownloadArtifactResult struct {
	Content  io.ReadCloser
	Filename string
	Size     int64
	Checksum string
	Version  string
}

// DownloadArtifactUseCase handles streaming stored artifacts. Downloads work
// for inactive versions too; retirement gates new deploys only.
type DownloadArtifactUseCase struct {
	repo   release.Repository
	store  artifact.Store
	logger logger.Interface
}

// NewDownloadArtifactUseCase creates a new DownloadArtifactUseCase.
func NewDownloadArtifactUseCase(
	repo release.Repository,
	store artifact.Store,
	logger logger.Interface,
) *DownloadArtifactUseCase {
	return &DownloadArtifactUseCase{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Execute opens the stored artifact for the given version string.
func (uc *DownloadArtifactUseCase) Execute(ctx context.Context, query DownloadArtifactQuery) (*DownloadArtifactResult, error) {
	canonical := sharedversion.Canonical(query.Version)
	if canonical == "" {
		return nil, apperrors.NewValidationError("version is required")
	}

	version, err := uc.repo.GetByVersion(ctx, canonical)
	if err != nil {
		uc.logger.Errorw("failed to get version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if version == nil {
		return nil, apperrors.NewNotFoundError("version", canonical)
	}

	content, size, err := uc.store.Open(ctx, version.ArtifactPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			uc.logger.Errorw("artifact blob missing from store", "version", canonical, "path", version.ArtifactPath())
			return nil, apperrors.NewNotFoundError("artifact", canonical)
		}
		uc.logger.Errorw("failed to open artifact", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	if size != version.Size() {
		uc.logger.Warnw("stored artifact size disagrees with version record",
			"version", canonical,
			"recorded", version.Size(),
			"stored", size,
		)
	}

	return &DownloadArtifactResult{
		Content:  content,
		Filename: filepath.Base(version.ArtifactPath()),
		Size:     size,
		Checksum: version.Checksum(),
		Version:  version.Version(),
	}, nil
}
