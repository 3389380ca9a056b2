package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// GetClientQuery represents the input for retrieving a client.
type GetClientQuery struct {
	SID string
}

// GetClientUseCase handles retrieving a single client with derived status
// and, when available, the last self-reported agent status.
type GetClientUseCase struct {
	repo         fleet.Repository
	ledger       LedgerStatusReader
	liveStatus   LiveStatusReader
	offlineAfter time.Duration
	logger       logger.Interface
}

// NewGetClientUseCase creates a new GetClientUseCase.
func NewGetClientUseCase(
	repo fleet.Repository,
	ledger LedgerStatusReader,
	liveStatus LiveStatusReader,
	offlineAfter time.Duration,
	logger logger.Interface,
) *GetClientUseCase {
	return &GetClientUseCase{
		repo:         repo,
		ledger:       ledger,
		liveStatus:   liveStatus,
		offlineAfter: offlineAfter,
		logger:       logger,
	}
}

// Execute retrieves a client by public identifier.
func (uc *GetClientUseCase) Execute(ctx context.Context, query GetClientQuery) (*ClientDTO, error) {
	if query.SID == "" {
		return nil, errors.NewValidationError("id is required")
	}

	client, err := uc.repo.GetBySID(ctx, query.SID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "sid", query.SID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", query.SID)
	}

	status, err := resolveStatus(ctx, uc.ledger, client, uc.offlineAfter)
	if err != nil {
		uc.logger.Errorw("failed to derive client status", "sid", query.SID, "error", err)
		return nil, fmt.Errorf("failed to derive client status: %w", err)
	}

	dto := newClientDTO(client, status)
	config := client.Config()
	dto.Config = &config

	// Advisory only; a cache miss or error never fails the read.
	if live, err := uc.liveStatus.Get(ctx, client.SID()); err != nil {
		uc.logger.Warnw("failed to read live agent status", "sid", client.SID(), "error", err)
	} else {
		dto.LiveStatus = live
	}

	return dto, nil
}
