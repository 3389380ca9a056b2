// Package usecases contains the application use cases for the update ledger.
package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// DeployVersionCommand represents the input for deploying a version to a
// client. Supersede closes an open entry instead of failing the deploy.
type DeployVersionCommand struct {
	ClientSID string
	Version   string
	Supersede bool
}

// DeployVersionResult represents the ledger entry opened by a deploy.
type DeployVersionResult struct {
	UpdateID     string  `json:"update_id"` // Stripe-style prefixed ID (e.g., "upd_xK9mP2vL3nQ")
	ClientID     string  `json:"client_id"`
	FromVersion  *string `json:"from_version"`
	ToVersion    string  `json:"to_version"`
	Status       string  `json:"status"`
	SupersededID string  `json:"superseded_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// DeployVersionUseCase opens a pending ledger entry targeting a version at a
// client. The client picks the instruction up on its next poll.
type DeployVersionUseCase struct {
	clients  fleet.Repository
	versions VersionReader
	ledger   rollout.Repository
	txMgr    TransactionRunner
	logger   logger.Interface
}

// NewDeployVersionUseCase creates a new DeployVersionUseCase.
func NewDeployVersionUseCase(
	clients fleet.Repository,
	versions VersionReader,
	ledger rollout.Repository,
	txMgr TransactionRunner,
	logger logger.Interface,
) *DeployVersionUseCase {
	return &DeployVersionUseCase{
		clients:  clients,
		versions: versions,
		ledger:   ledger,
		txMgr:    txMgr,
		logger:   logger,
	}
}

// Execute deploys a version to a client. Deploying the version the client
// already runs is allowed; the agent reinstalls it.
func (uc *DeployVersionUseCase) Execute(ctx context.Context, cmd DeployVersionCommand) (*DeployVersionResult, error) {
	if cmd.ClientSID == "" {
		return nil, errors.NewValidationError("client id is required")
	}
	if cmd.Version == "" {
		return nil, errors.NewValidationError("version is required")
	}
	canonical := sharedversion.Canonical(cmd.Version)
	if !sharedversion.IsValid(canonical) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid semantic version: %s", cmd.Version))
	}

	uc.logger.Infow("executing deploy version use case",
		"client_sid", cmd.ClientSID,
		"version", canonical,
		"supersede", cmd.Supersede,
	)

	version, err := uc.versions.GetByVersion(ctx, canonical)
	if err != nil {
		uc.logger.Errorw("failed to get version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if version == nil {
		return nil, errors.NewNotFoundError("version", canonical)
	}
	if !version.IsActive() {
		return nil, errors.NewUnprocessableError(fmt.Sprintf("%s: %s", release.ErrVersionInactive.Error(), canonical))
	}

	client, err := uc.clients.GetBySID(ctx, cmd.ClientSID)
	if err != nil {
		uc.logger.Errorw("failed to get client", "sid", cmd.ClientSID, "error", err)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", cmd.ClientSID)
	}

	var (
		entry        *rollout.UpdateLog
		supersededID string
	)
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.clients.GetByIDForUpdate(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to lock client: %w", err)
		}
		if locked == nil {
			return errors.NewNotFoundError("client", cmd.ClientSID)
		}

		open, err := uc.ledger.GetOpenByClientID(txCtx, locked.ID())
		if err != nil {
			return fmt.Errorf("failed to get open update: %w", err)
		}
		if open != nil {
			if !cmd.Supersede {
				return errors.NewConflictError(fmt.Sprintf(
					"%s: update %s to version %s is %s",
					rollout.ErrUpdateInProgress.Error(), open.SID(), open.ToVersion(), open.Status(),
				))
			}
			if err := open.Supersede(canonical); err != nil {
				return fmt.Errorf("failed to supersede update %s: %w", open.SID(), err)
			}
			if err := uc.ledger.Update(txCtx, open); err != nil {
				return fmt.Errorf("failed to update superseded entry: %w", err)
			}
			supersededID = open.SID()
		}

		entry, err = rollout.NewUpdateLog(locked.ID(), locked.CurrentVersion(), canonical)
		if err != nil {
			return fmt.Errorf("failed to open ledger entry: %w", err)
		}
		if err := uc.ledger.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to save ledger entry: %w", err)
		}

		locked.SetTarget(canonical)
		if err := uc.clients.Update(txCtx, locked); err != nil {
			return fmt.Errorf("failed to update client target: %w", err)
		}
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		uc.logger.Errorw("failed to deploy version", "client_sid", cmd.ClientSID, "version", canonical, "error", txErr)
		return nil, txErr
	}

	uc.logger.Infow("version deployed successfully",
		"client_sid", cmd.ClientSID,
		"update_sid", entry.SID(),
		"version", canonical,
		"superseded_sid", supersededID,
	)

	return &DeployVersionResult{
		UpdateID:     entry.SID(),
		ClientID:     cmd.ClientSID,
		FromVersion:  entry.FromVersion(),
		ToVersion:    entry.ToVersion(),
		Status:       string(entry.Status()),
		SupersededID: supersededID,
		CreatedAt:    entry.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
