package usecases

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/shared/errors"
)

const testChecksum = "a3f5bc81d2e9407c6b1a8f3d5e7c90214f6a8b3c5d7e9f0a1b2c3d4e5f6a7b8c"

func newTestVersion(t *testing.T, ver string) *release.Version {
	t.Helper()
	v, err := release.NewVersion(ver, testChecksum, 16, ver+".tar.gz", "")
	require.NoError(t, err)
	return v
}

func TestPublishVersion_Success(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	content := []byte("artifact-bytes")
	sum := sha256.Sum256(content)

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:      "v1.4.0",
		ReleaseNotes: "fixes",
		Filename:     "app.tar.gz",
		Artifact:     bytes.NewReader(content),
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "1.4.0", result.Version)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, "fixes", result.ReleaseNotes)
	assert.True(t, result.IsActive)
	assert.True(t, strings.HasPrefix(result.ID, "ver_"))

	saved, err := repo.GetByVersion(context.Background(), "1.4.0")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "1.4.0.tar.gz", saved.ArtifactPath())
	assert.True(t, store.has("1.4.0.tar.gz"))
}

func TestPublishVersion_DeclaredValuesMatch(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	content := []byte("declared-ok")
	sum := sha256.Sum256(content)

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:          "2.0.0",
		Filename:         "app.tar.gz",
		Artifact:         bytes.NewReader(content),
		DeclaredChecksum: strings.ToUpper(hex.EncodeToString(sum[:])), // case-insensitive
		DeclaredSize:     int64(len(content)),
	})

	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)
}

func TestPublishVersion_DeclaredChecksumMismatch(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:          "1.4.0",
		Filename:         "app.tar.gz",
		Artifact:         bytes.NewReader([]byte("real-content")),
		DeclaredChecksum: testChecksum,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)

	// the rejected blob must not linger
	assert.False(t, store.has("1.4.0.tar.gz"))
	assert.Contains(t, store.removed, "1.4.0.tar.gz")

	exists, err := repo.ExistsByVersion(context.Background(), "1.4.0")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPublishVersion_DeclaredSizeMismatch(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:      "1.4.0",
		Filename:     "app.tar.gz",
		Artifact:     bytes.NewReader([]byte("real-content")),
		DeclaredSize: 999,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.False(t, store.has("1.4.0.tar.gz"))
}

func TestPublishVersion_EmptyArtifact(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:  "1.4.0",
		Filename: "app.tar.gz",
		Artifact: bytes.NewReader(nil),
	})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.False(t, store.has("1.4.0.tar.gz"))
}

func TestPublishVersion_DuplicateVersion(t *testing.T) {
	repo := newMockVersionRepo()
	repo.add(newTestVersion(t, "1.4.0"))
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:  "1.4.0",
		Filename: "app.tar.gz",
		Artifact: bytes.NewReader([]byte("other-bytes")),
	})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)

	// rejected before anything was stored
	assert.False(t, store.has("1.4.0.tar.gz"))
	assert.Empty(t, store.removed)
}

func TestPublishVersion_DuplicateOnCreate(t *testing.T) {
	// Concurrent publish slipping past the existence probe: the unique
	// index fires on create and the stored blob is discarded.
	repo := newMockVersionRepo()
	repo.createErr = release.ErrVersionExists
	store := newMockArtifactStore()
	uc := NewPublishVersionUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), PublishVersionCommand{
		Version:  "1.4.0",
		Filename: "app.tar.gz",
		Artifact: bytes.NewReader([]byte("raced-bytes")),
	})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	assert.False(t, store.has("1.4.0.tar.gz"))
	assert.Contains(t, store.removed, "1.4.0.tar.gz")
}

func TestPublishVersion_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  PublishVersionCommand
	}{
		{
			name: "missing version",
			cmd:  PublishVersionCommand{Artifact: bytes.NewReader([]byte("x"))},
		},
		{
			name: "invalid semver",
			cmd:  PublishVersionCommand{Version: "not-semver", Artifact: bytes.NewReader([]byte("x"))},
		},
		{
			name: "missing artifact",
			cmd:  PublishVersionCommand{Version: "1.0.0"},
		},
		{
			name: "negative declared size",
			cmd:  PublishVersionCommand{Version: "1.0.0", Artifact: bytes.NewReader([]byte("x")), DeclaredSize: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockVersionRepo()
			store := newMockArtifactStore()
			uc := NewPublishVersionUseCase(repo, store, newTestLogger())

			result, err := uc.Execute(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.Nil(t, result)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
		})
	}
}

func TestArtifactFilename(t *testing.T) {
	tests := []struct {
		version    string
		uploadName string
		want       string
	}{
		{"1.4.0", "app.tar.gz", "1.4.0.tar.gz"},
		{"1.4.0", "drover.bin", "1.4.0.bin"},
		{"2.0.0", "release.tar.zst", "2.0.0.tar.zst"},
		{"1.4.0", "", "1.4.0.tar.gz"},
		{"1.4.0", "binary", "1.4.0.tar.gz"},
		{"1.4.0", ".hidden", "1.4.0.tar.gz"},
		{"1.4.0", "../evil.zip", "1.4.0.zip"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, artifactFilename(tt.version, tt.uploadName), "upload %q", tt.uploadName)
	}
}
