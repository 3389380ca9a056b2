package usecases

import (
	"context"

	"github.com/drover-dev/drover/internal/domain/release"
)

// VersionReader is the slice of the release repository the ledger use cases
// need. Satisfied by release.Repository.
type VersionReader interface {
	GetByVersion(ctx context.Context, version string) (*release.Version, error)
}

// LiveStatusWriter records the latest self-reported agent status.
// Satisfied by cache.LiveStatusStore.
type LiveStatusWriter interface {
	Set(ctx context.Context, clientSID, status string) error
}

// TransactionRunner runs a function inside a database transaction.
// Satisfied by db.TransactionManager.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
