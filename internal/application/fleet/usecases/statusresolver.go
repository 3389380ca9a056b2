package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
)

// resolveStatus gathers the ledger facts for one client and derives its
// operator-facing status. The status is never stored; this is the only
// place the inputs are assembled.
func resolveStatus(ctx context.Context, ledger LedgerStatusReader, client *fleet.Client, offlineAfter time.Duration) (fleet.Status, error) {
	open, err := ledger.GetOpenByClientID(ctx, client.ID())
	if err != nil {
		return "", fmt.Errorf("failed to read open update: %w", err)
	}

	latest, err := ledger.GetLatestTerminalByClientID(ctx, client.ID())
	if err != nil {
		return "", fmt.Errorf("failed to read latest terminal update: %w", err)
	}

	facts := fleet.StatusFacts{
		LastSeenAt:    client.LastSeenAt(),
		HasOpenUpdate: open != nil,
	}
	if latest != nil {
		facts.LastTerminalFailed = latest.Status() == rollout.StatusFailed
		facts.LastTerminalAt = latest.CompletedAt()
	}

	return fleet.DeriveStatus(facts, time.Now(), offlineAfter), nil
}
