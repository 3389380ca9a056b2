// Package usecases contains the application use cases for the fleet domain.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drover-dev/drover/internal/domain/fleet"
	apperrors "github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// RegisterClientCommand represents the input for registering a client.
type RegisterClientCommand struct {
	Name string
	// Config is the optional initial apply configuration; nil applies the
	// fleet defaults.
	Config *fleet.Config
}

// RegisterClientResult represents the output of registering a client.
// Token carries the plaintext bearer token, returned exactly once.
type RegisterClientResult struct {
	ID        string       `json:"id"` // Stripe-style prefixed ID (e.g., "cl_xK9mP2vL3nQ")
	Name      string       `json:"name"`
	Token     string       `json:"token"`
	Config    fleet.Config `json:"config"`
	CreatedAt string       `json:"created_at"`
}

// RegisterClientUseCase handles client registration.
type RegisterClientUseCase struct {
	repo   fleet.Repository
	logger logger.Interface
}

// NewRegisterClientUseCase creates a new RegisterClientUseCase.
func NewRegisterClientUseCase(repo fleet.Repository, logger logger.Interface) *RegisterClientUseCase {
	return &RegisterClientUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute registers a new client and returns its bearer token. Only the
// token hash is persisted; the plaintext is not retrievable afterwards.
func (uc *RegisterClientUseCase) Execute(ctx context.Context, cmd RegisterClientCommand) (*RegisterClientResult, error) {
	uc.logger.Infow("executing register client use case", "name", cmd.Name)

	if strings.TrimSpace(cmd.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	config := fleet.DefaultConfig()
	if cmd.Config != nil {
		config = *cmd.Config
	}

	client, err := fleet.NewClient(cmd.Name, config)
	if err != nil {
		uc.logger.Errorw("invalid register client command", "name", cmd.Name, "error", err)
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.repo.Create(ctx, client); err != nil {
		if errors.Is(err, fleet.ErrNameTaken) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("client name %q already in use", client.Name()))
		}
		uc.logger.Errorw("failed to save client", "name", cmd.Name, "error", err)
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	// Plaintext token leaves the aggregate exactly once.
	token := client.GetAPIToken()
	client.ClearAPIToken()

	uc.logger.Infow("client registered successfully",
		"id", client.ID(),
		"sid", client.SID(),
		"name", client.Name(),
	)

	return &RegisterClientResult{
		ID:        client.SID(),
		Name:      client.Name(),
		Token:     token,
		Config:    client.Config(),
		CreatedAt: client.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
