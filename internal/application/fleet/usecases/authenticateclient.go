package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/shared/services"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// AuthenticateClientCommand contains the data needed to authenticate a
// client bearer token.
type AuthenticateClientCommand struct {
	PlainToken string
	IPAddress  string
}

// AuthenticateClientResult contains the resolved client identity.
type AuthenticateClientResult struct {
	ClientID  uint   // Internal database ID for downstream handlers
	ClientSID string // Stripe-style ID for logging and external display
	Name      string
}

// AuthenticateClientUseCase resolves bearer tokens to clients for the agent
// API middleware. Soft-deleted clients never resolve.
type AuthenticateClientUseCase struct {
	repo   fleet.Repository
	logger logger.Interface
}

// NewAuthenticateClientUseCase creates a new AuthenticateClientUseCase.
func NewAuthenticateClientUseCase(repo fleet.Repository, logger logger.Interface) *AuthenticateClientUseCase {
	return &AuthenticateClientUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute validates the presented token.
func (uc *AuthenticateClientUseCase) Execute(ctx context.Context, cmd AuthenticateClientCommand) (*AuthenticateClientResult, error) {
	if cmd.PlainToken == "" {
		return nil, fleet.ErrInvalidToken
	}

	tokenHash := services.NewTokenGenerator().HashToken(cmd.PlainToken)

	client, err := uc.repo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		uc.logger.Errorw("failed to look up client token", "ip", cmd.IPAddress, "error", err)
		return nil, fmt.Errorf("failed to look up client token: %w", err)
	}
	if client == nil {
		uc.logger.Warnw("client not found for token hash", "ip", cmd.IPAddress)
		return nil, fleet.ErrInvalidToken
	}

	// Constant-time comparison against the stored hash.
	if !client.VerifyAPIToken(cmd.PlainToken) {
		uc.logger.Warnw("client token verification failed", "sid", client.SID(), "ip", cmd.IPAddress)
		return nil, fleet.ErrInvalidToken
	}

	uc.logger.Debugw("client token validated successfully",
		"sid", client.SID(),
		"name", client.Name(),
		"ip", cmd.IPAddress,
	)

	return &AuthenticateClientResult{
		ClientID:  client.ID(),
		ClientSID: client.SID(),
		Name:      client.Name(),
	}, nil
}
