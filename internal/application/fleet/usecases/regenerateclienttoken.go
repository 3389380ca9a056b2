package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// RegenerateClientTokenCommand represents the input for regenerating a
// client's bearer token.
type RegenerateClientTokenCommand struct {
	SID string
}

// RegenerateClientTokenResult represents the output of token regeneration.
// Token carries the new plaintext token, returned exactly once.
type RegenerateClientTokenResult struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// RegenerateClientTokenUseCase handles bearer token rotation. The old hash
// is replaced atomically, so the previous token stops working the moment
// the new one exists.
type RegenerateClientTokenUseCase struct {
	repo   fleet.Repository
	txMgr  TransactionRunner
	logger logger.Interface
}

// NewRegenerateClientTokenUseCase creates a new RegenerateClientTokenUseCase.
func NewRegenerateClientTokenUseCase(
	repo fleet.Repository,
	txMgr TransactionRunner,
	logger logger.Interface,
) *RegenerateClientTokenUseCase {
	return &RegenerateClientTokenUseCase{
		repo:   repo,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Execute issues a replacement token for the client.
func (uc *RegenerateClientTokenUseCase) Execute(ctx context.Context, cmd RegenerateClientTokenCommand) (*RegenerateClientTokenResult, error) {
	if cmd.SID == "" {
		return nil, errors.NewValidationError("id is required")
	}

	uc.logger.Infow("executing regenerate client token use case", "sid", cmd.SID)

	client, err := uc.repo.GetBySID(ctx, cmd.SID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "sid", cmd.SID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", cmd.SID)
	}

	var plainToken string
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.repo.GetByIDForUpdate(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to lock client: %w", err)
		}
		if locked == nil {
			return errors.NewNotFoundError("client", cmd.SID)
		}
		token, err := locked.RegenerateToken()
		if err != nil {
			return fmt.Errorf("failed to regenerate token: %w", err)
		}
		if err := uc.repo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		locked.ClearAPIToken()
		plainToken = token
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		uc.logger.Errorw("failed to regenerate client token", "sid", cmd.SID, "error", txErr)
		return nil, txErr
	}

	uc.logger.Infow("client token regenerated successfully", "id", client.ID(), "sid", client.SID())

	return &RegenerateClientTokenResult{
		ID:    cmd.SID,
		Token: plainToken,
	}, nil
}
