package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// SetVersionActiveCommand represents the input for flipping the active flag.
type SetVersionActiveCommand struct {
	Version string
	Active  bool
}

// SetVersionActiveUseCase handles retiring and re-activating versions.
// Deactivation gates new deploys only; open ledger entries referencing the
// version keep being served.
type SetVersionActiveUseCase struct {
	repo   release.Repository
	logger logger.Interface
}

// NewSetVersionActiveUseCase creates a new SetVersionActiveUseCase.
func NewSetVersionActiveUseCase(repo release.Repository, logger logger.Interface) *SetVersionActiveUseCase {
	return &SetVersionActiveUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute flips the version's active flag.
func (uc *SetVersionActiveUseCase) Execute(ctx context.Context, cmd SetVersionActiveCommand) (*VersionDTO, error) {
	canonical := sharedversion.Canonical(cmd.Version)
	if canonical == "" {
		return nil, errors.NewValidationError("version is required")
	}

	uc.logger.Infow("executing set version active use case", "version", canonical, "active", cmd.Active)

	version, err := uc.repo.GetByVersion(ctx, canonical)
	if err != nil {
		uc.logger.Errorw("failed to get version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if version == nil {
		return nil, errors.NewNotFoundError("version", canonical)
	}

	if cmd.Active {
		version.Activate()
	} else {
		version.Deactivate()
	}

	if err := uc.repo.Update(ctx, version); err != nil {
		uc.logger.Errorw("failed to update version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to update version: %w", err)
	}

	uc.logger.Infow("version active flag updated", "version", canonical, "active", version.IsActive())
	return newVersionDTO(version), nil
}
