// Package release provides domain models and business logic for published
// software versions and their artifacts.
package release

import (
	"fmt"
	"regexp"
	"time"

	"github.com/drover-dev/drover/internal/shared/id"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

var checksumPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Version represents a published software version aggregate root.
// Everything except the active flag is immutable after creation.
type Version struct {
	id           uint
	sid          string
	version      string
	checksum     string
	size         int64
	artifactPath string
	releaseNotes string
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewVersion creates a new version record. The version string is canonicalized
// (leading "v" stripped); checksum must be a lowercase hex SHA-256 digest of
// the stored artifact bytes.
func NewVersion(version, checksum string, size int64, artifactPath, releaseNotes string) (*Version, error) {
	canonical := sharedversion.Canonical(version)
	if canonical == "" {
		return nil, ErrVersionRequired
	}
	if !sharedversion.IsValid(canonical) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVersion, version)
	}
	if !checksumPattern.MatchString(checksum) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChecksum, checksum)
	}
	if size <= 0 {
		return nil, ErrEmptyArtifact
	}
	if artifactPath == "" {
		return nil, fmt.Errorf("artifact path is required")
	}

	sid, err := id.GenerateWithPrefix(id.PrefixVersion, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate version sid: %w", err)
	}

	now := time.Now()
	return &Version{
		sid:          sid,
		version:      canonical,
		checksum:     checksum,
		size:         size,
		artifactPath: artifactPath,
		releaseNotes: releaseNotes,
		active:       true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructVersion rebuilds a version from persistence.
func ReconstructVersion(
	versionID uint,
	sid string,
	version string,
	checksum string,
	size int64,
	artifactPath string,
	releaseNotes string,
	active bool,
	createdAt, updatedAt time.Time,
) (*Version, error) {
	if versionID == 0 {
		return nil, fmt.Errorf("version ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("version sid is required")
	}
	if version == "" {
		return nil, ErrVersionRequired
	}
	if checksum == "" {
		return nil, fmt.Errorf("checksum is required")
	}

	return &Version{
		id:           versionID,
		sid:          sid,
		version:      version,
		checksum:     checksum,
		size:         size,
		artifactPath: artifactPath,
		releaseNotes: releaseNotes,
		active:       active,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the internal version ID
func (v *Version) ID() uint {
	return v.id
}

// SID returns the public version identifier
func (v *Version) SID() string {
	return v.sid
}

// Version returns the canonical version string (no "v" prefix)
func (v *Version) Version() string {
	return v.version
}

// Checksum returns the hex SHA-256 digest of the artifact
func (v *Version) Checksum() string {
	return v.checksum
}

// Size returns the artifact size in bytes
func (v *Version) Size() int64 {
	return v.size
}

// ArtifactPath returns the storage key of the artifact blob
func (v *Version) ArtifactPath() string {
	return v.artifactPath
}

// ReleaseNotes returns the optional release notes
func (v *Version) ReleaseNotes() string {
	return v.releaseNotes
}

// IsActive reports whether the version may be targeted by new deploys
func (v *Version) IsActive() bool {
	return v.active
}

// CreatedAt returns when the version was published
func (v *Version) CreatedAt() time.Time {
	return v.createdAt
}

// UpdatedAt returns when the version was last updated
func (v *Version) UpdatedAt() time.Time {
	return v.updatedAt
}

// SetID sets the version ID (only for persistence layer use)
func (v *Version) SetID(versionID uint) error {
	if v.id != 0 {
		return fmt.Errorf("version ID is already set")
	}
	if versionID == 0 {
		return fmt.Errorf("version ID cannot be zero")
	}
	v.id = versionID
	return nil
}

// Activate makes the version deployable again.
func (v *Version) Activate() {
	if v.active {
		return
	}
	v.active = true
	v.updatedAt = time.Now()
}

// Deactivate retires the version from new deploys. Ledger entries that
// already reference it keep working.
func (v *Version) Deactivate() {
	if !v.active {
		return
	}
	v.active = false
	v.updatedAt = time.Now()
}

// NewerThan reports whether this version orders after other under semver.
func (v *Version) NewerThan(other string) bool {
	return sharedversion.Compare(v.version, other) > 0
}
