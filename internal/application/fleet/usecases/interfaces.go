package usecases

import (
	"context"

	"github.com/drover-dev/drover/internal/domain/rollout"
)

// LedgerStatusReader provides the update-ledger facts the derived client
// status needs. Satisfied by rollout.Repository.
type LedgerStatusReader interface {
	// GetOpenByClientID returns the client's open entry, or nil when none.
	GetOpenByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error)

	// GetLatestTerminalByClientID returns the client's most recently
	// completed entry, or nil when the ledger holds none.
	GetLatestTerminalByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error)
}

// LiveStatusReader reads the advisory self-reported agent status. Satisfied
// by cache.LiveStatusStore.
type LiveStatusReader interface {
	// Get returns the last reported status, or "" when none is stored.
	Get(ctx context.Context, clientSID string) (string, error)
}

// TransactionRunner runs a function inside a database transaction. Satisfied
// by db.TransactionManager.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
