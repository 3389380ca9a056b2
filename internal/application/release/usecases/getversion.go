package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// GetVersionQuery represents the input for retrieving a version.
type GetVersionQuery struct {
	Version string
}

// GetVersionUseCase handles retrieving a single version by version string.
type GetVersionUseCase struct {
	repo   release.Repository
	logger logger.Interface
}

// NewGetVersionUseCase creates a new GetVersionUseCase.
func NewGetVersionUseCase(repo release.Repository, logger logger.Interface) *GetVersionUseCase {
	return &GetVersionUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute retrieves a version by its version string.
func (uc *GetVersionUseCase) Execute(ctx context.Context, query GetVersionQuery) (*VersionDTO, error) {
	canonical := sharedversion.Canonical(query.Version)
	if canonical == "" {
		return nil, errors.NewValidationError("version is required")
	}

	version, err := uc.repo.GetByVersion(ctx, canonical)
	if err != nil {
		uc.logger.Errorw("failed to get version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if version == nil {
		return nil, errors.NewNotFoundError("version", canonical)
	}

	return newVersionDTO(version), nil
}
