package release

import "context"

// Repository defines the interface for version persistence.
type Repository interface {
	// Create persists a new version record.
	Create(ctx context.Context, version *Version) error

	// GetByID retrieves a version by internal ID.
	GetByID(ctx context.Context, id uint) (*Version, error)

	// GetBySID retrieves a version by public identifier.
	GetBySID(ctx context.Context, sid string) (*Version, error)

	// GetByVersion retrieves a version by its canonical version string.
	GetByVersion(ctx context.Context, version string) (*Version, error)

	// Update persists changes to an existing version record.
	Update(ctx context.Context, version *Version) error

	// List returns versions with optional filtering, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Version, int64, error)

	// ExistsByVersion checks if a version string is already registered.
	ExistsByVersion(ctx context.Context, version string) (bool, error)
}

// ListFilter defines the filtering options for listing versions.
type ListFilter struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}
