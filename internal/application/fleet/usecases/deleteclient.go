package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// DeleteClientCommand represents the input for deleting a client.
type DeleteClientCommand struct {
	SID string
}

// DeleteClientUseCase handles client removal. The delete is soft: ledger
// rows stay for audit, but the token stops authenticating immediately.
type DeleteClientUseCase struct {
	repo   fleet.Repository
	logger logger.Interface
}

// NewDeleteClientUseCase creates a new DeleteClientUseCase.
func NewDeleteClientUseCase(repo fleet.Repository, logger logger.Interface) *DeleteClientUseCase {
	return &DeleteClientUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute soft-deletes the client.
func (uc *DeleteClientUseCase) Execute(ctx context.Context, cmd DeleteClientCommand) error {
	if cmd.SID == "" {
		return errors.NewValidationError("id is required")
	}

	uc.logger.Infow("executing delete client use case", "sid", cmd.SID)

	client, err := uc.repo.GetBySID(ctx, cmd.SID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "sid", cmd.SID, "error", err)
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return errors.NewNotFoundError("client", cmd.SID)
	}

	if err := uc.repo.Delete(ctx, client.ID()); err != nil {
		uc.logger.Errorw("failed to delete client", "sid", cmd.SID, "error", err)
		return fmt.Errorf("failed to delete client: %w", err)
	}

	uc.logger.Infow("client deleted successfully", "id", client.ID(), "sid", client.SID(), "name", client.Name())
	return nil
}
