package usecases

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/shared/errors"
)

// publishTestArtifact stores a blob and registers a matching version row.
func publishTestArtifact(t *testing.T, repo *mockVersionRepo, store *mockArtifactStore, ver string, content []byte) *release.Version {
	t.Helper()
	stored, err := store.Save(context.Background(), ver+".tar.gz", bytes.NewReader(content))
	require.NoError(t, err)
	v, err := release.NewVersion(ver, stored.Checksum, stored.Size, stored.Path, "")
	require.NoError(t, err)
	repo.add(v)
	return v
}

func TestDownloadArtifact_Success(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	content := []byte("payload-bytes")
	v := publishTestArtifact(t, repo, store, "1.4.0", content)
	uc := NewDownloadArtifactUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), DownloadArtifactQuery{Version: "1.4.0"})

	require.NoError(t, err)
	require.NotNil(t, result)
	defer result.Content.Close()

	got, err := io.ReadAll(result.Content)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, v.Checksum(), result.Checksum)
	assert.Equal(t, "1.4.0.tar.gz", result.Filename)
	assert.Equal(t, "1.4.0", result.Version)
}

func TestDownloadArtifact_InactiveVersionStillServed(t *testing.T) {
	repo := newMockVersionRepo()
	store := newMockArtifactStore()
	v := publishTestArtifact(t, repo, store, "1.4.0", []byte("old-bytes"))
	v.Deactivate()
	uc := NewDownloadArtifactUseCase(repo, store, newTestLogger())

	result, err := uc.Execute(context.Background(), DownloadArtifactQuery{Version: "1.4.0"})

	require.NoError(t, err)
	require.NotNil(t, result)
	result.Content.Close()
}

func TestDownloadArtifact_UnknownVersion(t *testing.T) {
	uc := NewDownloadArtifactUseCase(newMockVersionRepo(), newMockArtifactStore(), newTestLogger())

	result, err := uc.Execute(context.Background(), DownloadArtifactQuery{Version: "9.9.9"})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestDownloadArtifact_BlobMissing(t *testing.T) {
	repo := newMockVersionRepo()
	repo.add(newTestVersion(t, "1.4.0")) // version row without a stored blob
	uc := NewDownloadArtifactUseCase(repo, newMockArtifactStore(), newTestLogger())

	result, err := uc.Execute(context.Background(), DownloadArtifactQuery{Version: "1.4.0"})

	require.Error(t, err)
	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}
