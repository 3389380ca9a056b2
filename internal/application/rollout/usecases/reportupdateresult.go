package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// ReportUpdateResultCommand represents an agent's outcome report for the
// update it was handed. Version is optional but recommended; it is used to
// detect misdirected and duplicate reports.
type ReportUpdateResultCommand struct {
	ClientID     uint
	ClientSID    string
	Success      bool
	Version      string
	ErrorMessage string
}

// OutcomeResult is the recorded terminal outcome returned to the agent. A
// duplicate report receives the stored outcome unchanged.
type OutcomeResult struct {
	Status   string `json:"status"`
	UpdateID string `json:"update_id"`
}

// ReportUpdateResultUseCase lands outcome reports on the ledger and applies
// the rollback policy on failures.
type ReportUpdateResultUseCase struct {
	clients fleet.Repository
	ledger  rollout.Repository
	txMgr   TransactionRunner
	logger  logger.Interface
}

// NewReportUpdateResultUseCase creates a new ReportUpdateResultUseCase.
func NewReportUpdateResultUseCase(
	clients fleet.Repository,
	ledger rollout.Repository,
	txMgr TransactionRunner,
	logger logger.Interface,
) *ReportUpdateResultUseCase {
	return &ReportUpdateResultUseCase{
		clients: clients,
		ledger:  ledger,
		txMgr:   txMgr,
		logger:  logger,
	}
}

// Execute records an outcome. The open entry is resolved under the client
// row lock, so a report and a concurrent deploy or poll cannot interleave.
func (uc *ReportUpdateResultUseCase) Execute(ctx context.Context, cmd ReportUpdateResultCommand) (*OutcomeResult, error) {
	reported := ""
	if cmd.Version != "" {
		reported = sharedversion.Canonical(cmd.Version)
		if !sharedversion.IsValid(reported) {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid semantic version: %s", cmd.Version))
		}
	}

	var outcome *OutcomeResult
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		client, err := uc.clients.GetByIDForUpdate(txCtx, cmd.ClientID)
		if err != nil {
			return fmt.Errorf("failed to lock client: %w", err)
		}
		if client == nil {
			return errors.NewUnauthorizedError("client no longer exists")
		}

		open, err := uc.ledger.GetOpenByClientID(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to get open update: %w", err)
		}

		if open != nil && open.Status() == rollout.StatusInProgress &&
			(reported == "" || reported == open.ToVersion()) {
			outcome, err = uc.closeOut(txCtx, client, open, cmd)
			return err
		}

		// A pending entry was never handed out, so the report cannot be for
		// it. Check whether the report duplicates the stored outcome.
		last, err := uc.ledger.GetLatestTerminalByClientID(txCtx, client.ID())
		if err != nil {
			return fmt.Errorf("failed to get latest terminal update: %w", err)
		}
		if last != nil && last.MatchesOutcome(cmd.Success, reported) {
			outcome = &OutcomeResult{Status: string(last.Status()), UpdateID: last.SID()}
			return nil
		}
		if open == nil && last != nil {
			return errors.NewConflictError(rollout.ErrConflictingReport.Error())
		}
		return errors.NewConflictError(rollout.ErrNoActiveUpdate.Error())
	})
	if txErr != nil {
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		uc.logger.Errorw("failed to record update result", "client_sid", cmd.ClientSID, "error", txErr)
		return nil, txErr
	}

	return outcome, nil
}

// closeOut terminates the handed-out entry and settles the client's version
// pointers. On failure the rollback policy may open a follow-up entry; a
// failed rollback never chains another one.
func (uc *ReportUpdateResultUseCase) closeOut(
	ctx context.Context,
	client *fleet.Client,
	open *rollout.UpdateLog,
	cmd ReportUpdateResultCommand,
) (*OutcomeResult, error) {
	if cmd.Success {
		if err := open.Complete(); err != nil {
			return nil, fmt.Errorf("failed to complete update %s: %w", open.SID(), err)
		}
		if err := uc.ledger.Update(ctx, open); err != nil {
			return nil, fmt.Errorf("failed to save update %s: %w", open.SID(), err)
		}
		client.AdvanceCurrent(open.ToVersion())
		client.ClearTarget()
		if err := uc.clients.Update(ctx, client); err != nil {
			return nil, fmt.Errorf("failed to update client: %w", err)
		}

		uc.logger.Infow("update applied successfully",
			"client_sid", client.SID(),
			"update_sid", open.SID(),
			"version", open.ToVersion(),
			"status", open.Status(),
		)
		return &OutcomeResult{Status: string(open.Status()), UpdateID: open.SID()}, nil
	}

	if err := open.Fail(cmd.ErrorMessage); err != nil {
		return nil, fmt.Errorf("failed to fail update %s: %w", open.SID(), err)
	}
	if err := uc.ledger.Update(ctx, open); err != nil {
		return nil, fmt.Errorf("failed to save update %s: %w", open.SID(), err)
	}

	rolledBack := false
	if !open.IsRollback() && client.Config().RollbackOnFailure &&
		open.FromVersion() != nil && *open.FromVersion() != "" {
		rb, err := rollout.NewRollbackLog(open)
		if err != nil {
			return nil, fmt.Errorf("failed to open rollback entry: %w", err)
		}
		if err := uc.ledger.Create(ctx, rb); err != nil {
			return nil, fmt.Errorf("failed to save rollback entry: %w", err)
		}
		client.SetTarget(rb.ToVersion())
		rolledBack = true
		uc.logger.Infow("rollback opened after failed update",
			"client_sid", client.SID(),
			"failed_sid", open.SID(),
			"rollback_sid", rb.SID(),
			"rollback_to", rb.ToVersion(),
		)
	}
	if !rolledBack {
		client.ClearTarget()
	}
	if err := uc.clients.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	uc.logger.Warnw("update failed",
		"client_sid", client.SID(),
		"update_sid", open.SID(),
		"version", open.ToVersion(),
		"rollback_opened", rolledBack,
		"error_message", cmd.ErrorMessage,
	)
	return &OutcomeResult{Status: string(open.Status()), UpdateID: open.SID()}, nil
}
