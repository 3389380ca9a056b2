package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/drover-dev/drover/internal/shared/logger"
)

// FilesystemStore implements Store on top of a local directory.
type FilesystemStore struct {
	dir    string
	logger logger.Interface
}

// NewFilesystemStore creates a filesystem-backed artifact store rooted at dir.
// The directory is created on first use.
func NewFilesystemStore(dir string, logger logger.Interface) *FilesystemStore {
	return &FilesystemStore{
		dir:    dir,
		logger: logger,
	}
}

// Save streams the reader into the store, hashing as it writes. The file is
// written to a temp name first and renamed into place so readers never see a
// partial artifact.
func (s *FilesystemStore) Save(_ context.Context, filename string, r io.Reader) (*SaveResult, error) {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid artifact file name %q", filename)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush artifact: %w", err)
	}

	finalPath := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, finalPath); err != nil {
		return nil, fmt.Errorf("failed to finalize artifact: %w", err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	s.logger.Infow("artifact stored", "path", name, "size", size, "checksum", checksum)

	return &SaveResult{
		Path:     name,
		Size:     size,
		Checksum: checksum,
	}, nil
}

// Open returns a reader over a stored artifact and its size. The path must
// resolve inside the store root.
func (s *FilesystemStore) Open(_ context.Context, path string) (io.ReadCloser, int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("artifact %s: %w", path, os.ErrNotExist)
		}
		return nil, 0, fmt.Errorf("failed to open artifact: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat artifact: %w", err)
	}

	return file, info.Size(), nil
}

// Remove deletes a stored artifact. A missing file is treated as removed.
func (s *FilesystemStore) Remove(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}

// resolve joins the relative path against the store root and rejects any
// path that escapes it.
func (s *FilesystemStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact path %q", path)
	}
	return filepath.Join(s.dir, cleaned), nil
}
