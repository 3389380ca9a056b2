// Package artifact stores release artifacts on the local filesystem.
package artifact

import (
	"context"
	"io"
)

// SaveResult describes a stored artifact.
type SaveResult struct {
	// Path is the storage-relative path to persist alongside the version.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Checksum is the hex-encoded SHA-256 of the stored bytes.
	Checksum string
}

// Store persists and serves artifact blobs. Paths are relative to the
// store root so the root can move without rewriting version rows.
type Store interface {
	// Save streams the reader to storage under the given file name and
	// returns the stored path, size, and checksum.
	Save(ctx context.Context, filename string, r io.Reader) (*SaveResult, error)

	// Open returns a reader over a stored artifact and its size.
	Open(ctx context.Context, path string) (io.ReadCloser, int64, error)

	// Remove deletes a stored artifact. Removing a missing artifact is
	// not an error.
	Remove(ctx context.Context, path string) error
}
