package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// Check-in response actions.
const (
	ActionNone   = "none"
	ActionUpdate = "update"
)

// CheckinCommand represents one authenticated agent poll. ClientID and
// ClientSID come from the token middleware, never from the request body.
type CheckinCommand struct {
	ClientID  uint
	ClientSID string
	// CurrentVersion is the version the agent reports running, optional.
	CurrentVersion string
	// Status is the free-form agent health string, optional. It is stored
	// in the live status cache only.
	Status string
}

// CheckinResult is the poll response. The config bag rides along on update
// instructions so agents pick up config changes without a dedicated endpoint.
type CheckinResult struct {
	Action        string        `json:"action"`
	TargetVersion string        `json:"target_version,omitempty"`
	ArtifactURL   string        `json:"artifact_url,omitempty"`
	Checksum      string        `json:"checksum,omitempty"`
	Size          int64         `json:"size,omitempty"`
	Config        *fleet.Config `json:"config,omitempty"`
}

// CheckinUseCase handles the agent poll loop: records check-in recency,
// hands out at most one open update instruction, and repairs a lost ledger
// entry when a target is set without one.
type CheckinUseCase struct {
	clients    fleet.Repository
	versions   VersionReader
	ledger     rollout.Repository
	liveStatus LiveStatusWriter
	txMgr      TransactionRunner
	logger     logger.Interface
}

// NewCheckinUseCase creates a new CheckinUseCase.
func NewCheckinUseCase(
	clients fleet.Repository,
	versions VersionReader,
	ledger rollout.Repository,
	liveStatus LiveStatusWriter,
	txMgr TransactionRunner,
	logger logger.Interface,
) *CheckinUseCase {
	return &CheckinUseCase{
		clients:    clients,
		versions:   versions,
		ledger:     ledger,
		liveStatus: liveStatus,
		txMgr:      txMgr,
		logger:     logger,
	}
}

// Execute processes a poll. Hand-out happens at most once per entry: the
// pending to in_progress transition shares the transaction with the client
// row lock, so a concurrent duplicate poll serializes behind it and takes
// the idempotent in_progress branch.
func (uc *CheckinUseCase) Execute(ctx context.Context, cmd CheckinCommand) (*CheckinResult, error) {
	// Reported versions are canonicalized when they parse as semver and kept
	// verbatim otherwise. The registry records what agents claim to run.
	reported := strings.TrimSpace(cmd.CurrentVersion)
	if sharedversion.IsValid(reported) {
		reported = sharedversion.Canonical(reported)
	}

	now := time.Now()
	var result *CheckinResult
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		client, err := uc.clients.GetByIDForUpdate(txCtx, cmd.ClientID)
		if err != nil {
			return fmt.Errorf("failed to lock client: %w", err)
		}
		if client == nil {
			// Token resolved before the transaction; the client was deleted since.
			return errors.NewUnauthorizedError("client no longer exists")
		}

		var reportedPtr *string
		if reported != "" {
			reportedPtr = &reported
		}
		if err := uc.clients.UpdateLastSeen(txCtx, client.ID(), now, reportedPtr); err != nil {
			return fmt.Errorf("failed to record check-in: %w", err)
		}

		current := client.CurrentVersion()
		if reported != "" {
			current = &reported
		}

		open, err := uc.ledger.GetOpenByClientID(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to get open update: %w", err)
		}
		if open != nil {
			if open.Status() == rollout.StatusPending {
				if err := open.MarkInProgress(); err != nil {
					return fmt.Errorf("failed to hand out update %s: %w", open.SID(), err)
				}
				if err := uc.ledger.Update(txCtx, open); err != nil {
					return fmt.Errorf("failed to save hand-out of update %s: %w", open.SID(), err)
				}
			}
			result, err = uc.buildInstruction(txCtx, client, open)
			return err
		}

		if target := client.TargetVersion(); target != nil && *target != "" &&
			(current == nil || *current != *target) {
			// Deploy always opens an entry, so reaching this point means the
			// ledger lost one. Reopen it and hand it out in the same poll.
			entry, err := rollout.NewUpdateLog(client.ID(), current, *target)
			if err != nil {
				return fmt.Errorf("failed to reopen ledger entry: %w", err)
			}
			if err := entry.MarkInProgress(); err != nil {
				return fmt.Errorf("failed to hand out reopened entry: %w", err)
			}
			if err := uc.ledger.Create(txCtx, entry); err != nil {
				return fmt.Errorf("failed to save reopened entry: %w", err)
			}
			uc.logger.Warnw("reopened missing ledger entry for targeted client",
				"client_sid", client.SID(),
				"target_version", *target,
				"update_sid", entry.SID(),
			)
			result, err = uc.buildInstruction(txCtx, client, entry)
			return err
		}

		result = &CheckinResult{Action: ActionNone}
		return nil
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		uc.logger.Errorw("failed to process check-in", "client_sid", cmd.ClientSID, "error", txErr)
		return nil, txErr
	}

	// Advisory only; losing a status write never fails the poll.
	if cmd.Status != "" {
		if err := uc.liveStatus.Set(ctx, cmd.ClientSID, cmd.Status); err != nil {
			uc.logger.Warnw("failed to record live agent status", "client_sid", cmd.ClientSID, "error", err)
		}
	}

	return result, nil
}

// buildInstruction renders the update instruction for an open entry. The
// version row is served regardless of its active flag: deactivation gates
// new deploys, not in-flight work.
func (uc *CheckinUseCase) buildInstruction(ctx context.Context, client *fleet.Client, entry *rollout.UpdateLog) (*CheckinResult, error) {
	version, err := uc.versions.GetByVersion(ctx, entry.ToVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to get version %s: %w", entry.ToVersion(), err)
	}
	if version == nil {
		uc.logger.Errorw("ledger entry references a missing version",
			"update_sid", entry.SID(),
			"version", entry.ToVersion(),
		)
		return nil, errors.NewInternalError(fmt.Sprintf("version %s for update %s is gone", entry.ToVersion(), entry.SID()))
	}

	config := client.Config()
	return &CheckinResult{
		Action:        ActionUpdate,
		TargetVersion: version.Version(),
		ArtifactURL:   "/agent/v1/artifacts/" + version.Version(),
		Checksum:      version.Checksum(),
		Size:          version.Size(),
		Config:        &config,
	}, nil
}
