package rollout

import "errors"

var (
	// ErrUpdateLogNotFound is returned when an update log entry is not found.
	ErrUpdateLogNotFound = errors.New("update log entry not found")

	// ErrUpdateInProgress is returned when a deploy collides with an open entry.
	ErrUpdateInProgress = errors.New("an update is already in progress for this client")

	// ErrNoActiveUpdate is returned when a result report has no open entry to land on.
	ErrNoActiveUpdate = errors.New("no active update for this client")

	// ErrIllegalTransition is returned on a state transition the ledger forbids.
	ErrIllegalTransition = errors.New("illegal update status transition")

	// ErrConflictingReport is returned when a duplicate report contradicts
	// the stored terminal outcome.
	ErrConflictingReport = errors.New("report contradicts recorded outcome")

	// ErrRollbackOfRollback is returned when the rollback policy would chain
	// off an entry that is itself a rollback.
	ErrRollbackOfRollback = errors.New("cannot roll back a rollback entry")

	// ErrNoRollbackTarget is returned when a failed entry has no known prior
	// version to roll back to.
	ErrNoRollbackTarget = errors.New("no version to roll back to")
)
