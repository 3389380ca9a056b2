package fleet

import "time"

// Status is the operator-facing client state. It is never stored: it is
// derived on read from check-in recency and ledger facts.
type Status string

const (
	// StatusOffline indicates the client has not checked in recently.
	StatusOffline Status = "offline"
	// StatusOnline indicates the client is checking in and idle.
	StatusOnline Status = "online"
	// StatusUpdating indicates an update is pending or being applied.
	StatusUpdating Status = "updating"
	// StatusError indicates the last update failed and the client has not
	// been heard from since.
	StatusError Status = "error"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOffline, StatusOnline, StatusUpdating, StatusError:
		return true
	}
	return false
}

// StatusFacts carries the stored facts the status derivation reads.
type StatusFacts struct {
	LastSeenAt *time.Time
	// HasOpenUpdate is true when a pending or in_progress ledger entry exists.
	HasOpenUpdate bool
	// LastTerminalFailed is true when the most recent terminal ledger entry
	// ended in failure.
	LastTerminalFailed bool
	// LastTerminalAt is the completion time of the most recent terminal
	// ledger entry, nil when the ledger is empty.
	LastTerminalAt *time.Time
}

// DeriveStatus computes the client status. Staleness wins over everything;
// an open ledger entry wins over the failure signal; the failure signal
// clears as soon as the client checks in again.
func DeriveStatus(facts StatusFacts, now time.Time, offlineAfter time.Duration) Status {
	if facts.LastSeenAt == nil || now.Sub(*facts.LastSeenAt) > offlineAfter {
		return StatusOffline
	}
	if facts.HasOpenUpdate {
		return StatusUpdating
	}
	if facts.LastTerminalFailed {
		if facts.LastTerminalAt == nil || !facts.LastSeenAt.After(*facts.LastTerminalAt) {
			return StatusError
		}
	}
	return StatusOnline
}
