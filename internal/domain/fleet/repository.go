package fleet

import (
	"context"
	"time"
)

// Repository defines the interface for client persistence.
type Repository interface {
	// Create persists a new client.
	Create(ctx context.Context, client *Client) error

	// GetByID retrieves a client by internal ID.
	GetByID(ctx context.Context, id uint) (*Client, error)

	// GetByIDForUpdate retrieves a client by internal ID, acquiring a row
	// lock when running inside a transaction. All ledger mutations for a
	// client serialize behind this lock.
	GetByIDForUpdate(ctx context.Context, id uint) (*Client, error)

	// GetBySID retrieves a client by public identifier.
	GetBySID(ctx context.Context, sid string) (*Client, error)

	// GetByTokenHash retrieves a client by bearer token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Client, error)

	// Update persists changes to an existing client.
	Update(ctx context.Context, client *Client) error

	// Delete soft-deletes a client. Ledger rows are kept.
	Delete(ctx context.Context, id uint) error

	// List returns clients with pagination, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Client, int64, error)

	// UpdateLastSeen persists check-in recency without touching the rest of
	// the aggregate.
	UpdateLastSeen(ctx context.Context, id uint, seenAt time.Time, currentVersion *string) error
}

// ListFilter defines the filtering options for listing clients.
type ListFilter struct {
	Page     int
	PageSize int
	Name     string
}
