// Package usecases contains the application use cases for the release domain.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/infrastructure/artifact"
	apperrors "github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
	sharedversion "github.com/drover-dev/drover/internal/shared/version"
)

// PublishVersionCommand represents the input for publishing a version.
type PublishVersionCommand struct {
	Version      string
	ReleaseNotes string
	// Filename is the upload's original file name, used only to pick the
	// stored artifact's extension.
	Filename string
	Artifact io.Reader
	// DeclaredChecksum and DeclaredSize are optional uploader-declared
	// values cross-checked against what the server computes while storing.
	DeclaredChecksum string
	DeclaredSize     int64
}

// PublishVersionResult represents the output of publishing a version.
type PublishVersionResult struct {
	ID           string `json:"id"` // Stripe-style prefixed ID (e.g., "ver_xK9mP2vL3nQ")
	Version      string `json:"version"`
	Checksum     string `json:"checksum"`
	Size         int64  `json:"size"`
	ReleaseNotes string `json:"release_notes,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
}

// PublishVersionUseCase handles publishing a new version with its artifact.
type PublishVersionUseCase struct {
	repo   release.Repository
	store  artifact.Store
	logger logger.Interface
}

// NewPublishVersionUseCase creates a new PublishVersionUseCase.
func NewPublishVersionUseCase(
	repo release.Repository,
	store artifact.Store,
	logger logger.Interface,
) *PublishVersionUseCase {
	return &PublishVersionUseCase{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Execute streams the artifact into the store and registers the version.
// The persisted checksum and size are always the server-computed ones; a
// declared value that disagrees rejects the publish and discards the blob.
func (uc *PublishVersionUseCase) Execute(ctx context.Context, cmd PublishVersionCommand) (*PublishVersionResult, error) {
	uc.logger.Infow("executing publish version use case", "version", cmd.Version)

	canonical := sharedversion.Canonical(cmd.Version)
	if err := uc.validateCommand(cmd, canonical); err != nil {
		uc.logger.Errorw("invalid publish version command", "version", cmd.Version, "error", err)
		return nil, err
	}

	exists, err := uc.repo.ExistsByVersion(ctx, canonical)
	if err != nil {
		uc.logger.Errorw("failed to check existing version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to check existing version: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflictError(fmt.Sprintf("version %s already exists", canonical))
	}

	stored, err := uc.store.Save(ctx, artifactFilename(canonical, cmd.Filename), cmd.Artifact)
	if err != nil {
		uc.logger.Errorw("failed to store artifact", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	if err := checkDeclared(cmd, stored); err != nil {
		uc.discard(ctx, stored.Path)
		return nil, err
	}

	version, err := release.NewVersion(canonical, stored.Checksum, stored.Size, stored.Path, cmd.ReleaseNotes)
	if err != nil {
		uc.discard(ctx, stored.Path)
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.repo.Create(ctx, version); err != nil {
		uc.discard(ctx, stored.Path)
		// The unique index is the final arbiter under concurrent publishes.
		if errors.Is(err, release.ErrVersionExists) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("version %s already exists", canonical))
		}
		uc.logger.Errorw("failed to save version", "version", canonical, "error", err)
		return nil, fmt.Errorf("failed to save version: %w", err)
	}

	uc.logger.Infow("version published successfully",
		"id", version.ID(),
		"sid", version.SID(),
		"version", version.Version(),
		"size", version.Size(),
	)

	return &PublishVersionResult{
		ID:           version.SID(),
		Version:      version.Version(),
		Checksum:     version.Checksum(),
		Size:         version.Size(),
		ReleaseNotes: version.ReleaseNotes(),
		IsActive:     version.IsActive(),
		CreatedAt:    version.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (uc *PublishVersionUseCase) validateCommand(cmd PublishVersionCommand, canonical string) error {
	if canonical == "" {
		return apperrors.NewValidationError("version is required")
	}
	if !sharedversion.IsValid(canonical) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid semantic version: %s", cmd.Version))
	}
	if cmd.Artifact == nil {
		return apperrors.NewValidationError("artifact file is required")
	}
	if cmd.DeclaredSize < 0 {
		return apperrors.NewValidationError("declared size cannot be negative")
	}
	return nil
}

// checkDeclared compares uploader-declared checksum and size against the
// values the server computed while writing the blob.
func checkDeclared(cmd PublishVersionCommand, stored *artifact.SaveResult) error {
	if stored.Size == 0 {
		return apperrors.NewValidationError(release.ErrEmptyArtifact.Error())
	}
	declared := strings.ToLower(strings.TrimSpace(cmd.DeclaredChecksum))
	if declared != "" && declared != stored.Checksum {
		return apperrors.NewValidationError(
			release.ErrChecksumMismatch.Error(),
			fmt.Sprintf("declared %s, computed %s", declared, stored.Checksum),
		)
	}
	if cmd.DeclaredSize > 0 && cmd.DeclaredSize != stored.Size {
		return apperrors.NewValidationError(
			release.ErrSizeMismatch.Error(),
			fmt.Sprintf("declared %d, computed %d", cmd.DeclaredSize, stored.Size),
		)
	}
	return nil
}

// discard removes a stored blob after a rejected publish.
func (uc *PublishVersionUseCase) discard(ctx context.Context, path string) {
	if err := uc.store.Remove(ctx, path); err != nil {
		uc.logger.Warnw("failed to remove rejected artifact", "path", path, "error", err)
	}
}

// artifactFilename derives the stored file name from the version string and
// the upload's extension, defaulting to tar.gz.
func artifactFilename(version, uploadName string) string {
	ext := "tar.gz"
	base := filepath.Base(uploadName)
	if idx := strings.Index(base, "."); idx > 0 && idx+1 < len(base) {
		ext = base[idx+1:]
	}
	return version + "." + ext
}
