package release

import "errors"

var (
	// ErrVersionNotFound is returned when a version is not found.
	ErrVersionNotFound = errors.New("version not found")

	// ErrVersionExists is returned when registering a version string that is already taken.
	ErrVersionExists = errors.New("version already exists")

	// ErrVersionRequired is returned when the version string is empty.
	ErrVersionRequired = errors.New("version is required")

	// ErrInvalidVersion is returned when the version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrInvalidChecksum is returned when a checksum is not a hex SHA-256 digest.
	ErrInvalidChecksum = errors.New("invalid sha256 checksum")

	// ErrChecksumMismatch is returned when a declared checksum disagrees with the computed one.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrSizeMismatch is returned when a declared size disagrees with the stored byte count.
	ErrSizeMismatch = errors.New("artifact size mismatch")

	// ErrEmptyArtifact is returned when the uploaded artifact holds no bytes.
	ErrEmptyArtifact = errors.New("artifact is empty")

	// ErrVersionInactive is returned when a retired version is targeted by a new deploy.
	ErrVersionInactive = errors.New("version is inactive")
)
