package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// UpdateClientConfigCommand represents the input for replacing a client's
// apply configuration.
type UpdateClientConfigCommand struct {
	SID    string
	Config fleet.Config
}

// UpdateClientConfigResult represents the output of a config update.
type UpdateClientConfigResult struct {
	ID        string       `json:"id"`
	Config    fleet.Config `json:"config"`
	UpdatedAt string       `json:"updated_at"`
}

// UpdateClientConfigUseCase handles client config replacement. The new bag
// reaches the agent on its next check-in response.
type UpdateClientConfigUseCase struct {
	repo   fleet.Repository
	txMgr  TransactionRunner
	logger logger.Interface
}

// NewUpdateClientConfigUseCase creates a new UpdateClientConfigUseCase.
func NewUpdateClientConfigUseCase(
	repo fleet.Repository,
	txMgr TransactionRunner,
	logger logger.Interface,
) *UpdateClientConfigUseCase {
	return &UpdateClientConfigUseCase{
		repo:   repo,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Execute replaces the client's config bag.
func (uc *UpdateClientConfigUseCase) Execute(ctx context.Context, cmd UpdateClientConfigCommand) (*UpdateClientConfigResult, error) {
	if cmd.SID == "" {
		return nil, errors.NewValidationError("id is required")
	}
	if err := cmd.Config.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	uc.logger.Infow("executing update client config use case", "sid", cmd.SID)

	client, err := uc.repo.GetBySID(ctx, cmd.SID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "sid", cmd.SID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", cmd.SID)
	}

	var updated *fleet.Client
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.repo.GetByIDForUpdate(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to lock client: %w", err)
		}
		if locked == nil {
			return errors.NewNotFoundError("client", cmd.SID)
		}
		if err := locked.UpdateConfig(cmd.Config); err != nil {
			return errors.NewValidationError(err.Error())
		}
		if err := uc.repo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		updated = locked
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		uc.logger.Errorw("failed to update client config", "sid", cmd.SID, "error", txErr)
		return nil, txErr
	}

	uc.logger.Infow("client config updated", "id", updated.ID(), "sid", updated.SID())

	return &UpdateClientConfigResult{
		ID:        updated.SID(),
		Config:    updated.Config(),
		UpdatedAt: updated.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
