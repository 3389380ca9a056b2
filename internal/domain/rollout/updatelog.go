// Package rollout provides the update ledger: every version change attempted
// on a client is recorded as a log entry moving through a small state
// machine, and the ledger is the single source of truth for update state.
package rollout

import (
	"fmt"
	"time"

	"github.com/drover-dev/drover/internal/shared/id"
)

// Status represents the lifecycle state of an update log entry.
type Status string

const (
	// StatusPending indicates the update was issued but not yet handed out.
	StatusPending Status = "pending"
	// StatusInProgress indicates the instruction was handed to the client.
	StatusInProgress Status = "in_progress"
	// StatusSuccess indicates the client applied the update.
	StatusSuccess Status = "success"
	// StatusFailed indicates the update failed or was superseded.
	StatusFailed Status = "failed"
	// StatusRolledBack indicates a rollback entry completed: the client is
	// back on the version it ran before the failed update.
	StatusRolledBack Status = "rolled_back"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusSuccess, StatusFailed, StatusRolledBack:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the entry's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusRolledBack:
		return true
	}
	return false
}

// IsOpen reports whether the entry still owns the client's update slot.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// UpdateLog represents one attempted version change on one client.
// Terminal entries are immutable history.
type UpdateLog struct {
	id           uint
	sid          string
	clientID     uint
	fromVersion  *string
	toVersion    string
	status       Status
	rollback     bool
	errorMessage *string
	startedAt    time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUpdateLog opens a pending entry for a deploy of toVersion.
func NewUpdateLog(clientID uint, fromVersion *string, toVersion string) (*UpdateLog, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("client ID cannot be zero")
	}
	if toVersion == "" {
		return nil, fmt.Errorf("target version is required")
	}

	sid, err := id.GenerateWithPrefix(id.PrefixUpdateLog, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate update log sid: %w", err)
	}

	now := time.Now()
	return &UpdateLog{
		sid:         sid,
		clientID:    clientID,
		fromVersion: fromVersion,
		toVersion:   toVersion,
		status:      StatusPending,
		startedAt:   now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewRollbackLog opens a pending rollback entry for a failed update. The
// entry reads as the reverse move: from the version the failed update
// attempted, back to the version the client ran before it.
func NewRollbackLog(failed *UpdateLog) (*UpdateLog, error) {
	if failed == nil {
		return nil, fmt.Errorf("failed entry is required")
	}
	if failed.status != StatusFailed {
		return nil, fmt.Errorf("rollback requires a failed entry, got %s", failed.status)
	}
	if failed.rollback {
		return nil, ErrRollbackOfRollback
	}
	if failed.fromVersion == nil || *failed.fromVersion == "" {
		return nil, ErrNoRollbackTarget
	}

	entry, err := NewUpdateLog(failed.clientID, &failed.toVersion, *failed.fromVersion)
	if err != nil {
		return nil, err
	}
	entry.rollback = true
	return entry, nil
}

// ReconstructUpdateLog rebuilds an entry from persistence.
func ReconstructUpdateLog(
	logID uint,
	sid string,
	clientID uint,
	fromVersion *string,
	toVersion string,
	status Status,
	rollback bool,
	errorMessage *string,
	startedAt time.Time,
	completedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*UpdateLog, error) {
	if logID == 0 {
		return nil, fmt.Errorf("update log ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("update log sid is required")
	}
	if clientID == 0 {
		return nil, fmt.Errorf("client ID cannot be zero")
	}
	if toVersion == "" {
		return nil, fmt.Errorf("target version is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid update status: %s", status)
	}

	return &UpdateLog{
		id:           logID,
		sid:          sid,
		clientID:     clientID,
		fromVersion:  fromVersion,
		toVersion:    toVersion,
		status:       status,
		rollback:     rollback,
		errorMessage: errorMessage,
		startedAt:    startedAt,
		completedAt:  completedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the internal entry ID
func (u *UpdateLog) ID() uint {
	return u.id
}

// SID returns the public entry identifier
func (u *UpdateLog) SID() string {
	return u.sid
}

// ClientID returns the owning client's internal ID
func (u *UpdateLog) ClientID() uint {
	return u.clientID
}

// FromVersion returns the version the client ran when the entry was opened,
// nil when it was unknown.
func (u *UpdateLog) FromVersion() *string {
	return u.fromVersion
}

// ToVersion returns the version the entry moves the client to.
func (u *UpdateLog) ToVersion() string {
	return u.toVersion
}

// Status returns the entry status
func (u *UpdateLog) Status() Status {
	return u.status
}

// IsRollback reports whether the entry was opened by the rollback policy.
func (u *UpdateLog) IsRollback() bool {
	return u.rollback
}

// ErrorMessage returns the failure detail or supersede reason, nil otherwise.
func (u *UpdateLog) ErrorMessage() *string {
	return u.errorMessage
}

// StartedAt returns when the entry was opened.
func (u *UpdateLog) StartedAt() time.Time {
	return u.startedAt
}

// CompletedAt returns when the entry reached a terminal status, nil while open.
func (u *UpdateLog) CompletedAt() *time.Time {
	return u.completedAt
}

// CreatedAt returns when the entry was created
func (u *UpdateLog) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the entry was last updated
func (u *UpdateLog) UpdatedAt() time.Time {
	return u.updatedAt
}

// SetID sets the entry ID (only for persistence layer use)
func (u *UpdateLog) SetID(logID uint) error {
	if u.id != 0 {
		return fmt.Errorf("update log ID is already set")
	}
	if logID == 0 {
		return fmt.Errorf("update log ID cannot be zero")
	}
	u.id = logID
	return nil
}

// MarkInProgress records the hand-out of the instruction to the client.
func (u *UpdateLog) MarkInProgress() error {
	if u.status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, u.status, StatusInProgress)
	}
	u.status = StatusInProgress
	u.updatedAt = time.Now()
	return nil
}

// Complete records a successful apply. Rollback entries terminate as
// rolled_back rather than success.
func (u *UpdateLog) Complete() error {
	if u.status != StatusInProgress {
		return fmt.Errorf("%w: %s -> terminal", ErrIllegalTransition, u.status)
	}
	if u.rollback {
		u.status = StatusRolledBack
	} else {
		u.status = StatusSuccess
	}
	now := time.Now()
	u.completedAt = &now
	u.updatedAt = now
	return nil
}

// Fail records a failed apply with the client-supplied detail.
func (u *UpdateLog) Fail(message string) error {
	if u.status != StatusInProgress {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, u.status, StatusFailed)
	}
	u.status = StatusFailed
	if message != "" {
		u.errorMessage = &message
	}
	now := time.Now()
	u.completedAt = &now
	u.updatedAt = now
	return nil
}

// Supersede closes an open entry because a newer deploy replaces it. The
// abandonment is recorded as a failure with the reason, never silently.
func (u *UpdateLog) Supersede(byVersion string) error {
	if !u.status.IsOpen() {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, u.status, StatusFailed)
	}
	u.status = StatusFailed
	msg := fmt.Sprintf("superseded by deploy of %s", byVersion)
	u.errorMessage = &msg
	now := time.Now()
	u.completedAt = &now
	u.updatedAt = now
	return nil
}

// MatchesOutcome reports whether a terminal entry already records the given
// report outcome, used for idempotent duplicate detection.
func (u *UpdateLog) MatchesOutcome(success bool, reportedVersion string) bool {
	if !u.status.IsTerminal() {
		return false
	}
	if reportedVersion != "" && reportedVersion != u.toVersion {
		return false
	}
	if success {
		return u.status == StatusSuccess || u.status == StatusRolledBack
	}
	return u.status == StatusFailed
}
