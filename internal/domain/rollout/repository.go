package rollout

import "context"

// Repository defines the interface for update ledger persistence.
type Repository interface {
	// Create persists a new ledger entry.
	Create(ctx context.Context, entry *UpdateLog) error

	// GetByID retrieves an entry by internal ID.
	GetByID(ctx context.Context, id uint) (*UpdateLog, error)

	// GetBySID retrieves an entry by public identifier.
	GetBySID(ctx context.Context, sid string) (*UpdateLog, error)

	// GetOpenByClientID returns the client's open (pending or in_progress)
	// entry, or nil when the client has none.
	GetOpenByClientID(ctx context.Context, clientID uint) (*UpdateLog, error)

	// GetLatestTerminalByClientID returns the client's most recently
	// completed entry, or nil when the ledger holds none.
	GetLatestTerminalByClientID(ctx context.Context, clientID uint) (*UpdateLog, error)

	// Update persists changes to an existing entry.
	Update(ctx context.Context, entry *UpdateLog) error

	// List returns ledger entries with optional filtering, newest first.
	List(ctx context.Context, filter ListFilter) ([]*UpdateLog, int64, error)
}

// ListFilter defines the filtering options for listing ledger entries.
type ListFilter struct {
	Page     int
	PageSize int
	ClientID uint
	Status   Status
}
