package usecases

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/shared/errors"
)

func TestRegenerateClientToken_Success(t *testing.T) {
	repo := newMockClientRepo()
	client, oldToken := registerTestClient(t, repo, "edge-gw-01")
	oldHash := client.TokenHash()
	tx := newMockTxRunner()
	uc := NewRegenerateClientTokenUseCase(repo, tx, newTestLogger())

	result, err := uc.Execute(context.Background(), RegenerateClientTokenCommand{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, client.SID(), result.ID)
	assert.True(t, strings.HasPrefix(result.Token, "drv_"))
	assert.NotEqual(t, oldToken, result.Token)
	assert.Equal(t, 1, tx.calls)

	// The old hash is gone; only the new token resolves.
	stale, err := repo.GetByTokenHash(context.Background(), oldHash)
	require.NoError(t, err)
	assert.Nil(t, stale)

	stored, err := repo.GetBySID(context.Background(), client.SID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.VerifyAPIToken(result.Token))
	assert.False(t, stored.VerifyAPIToken(oldToken))
	assert.Empty(t, stored.GetAPIToken(), "plaintext token must not survive rotation")
}

func TestRegenerateClientToken_NotFound(t *testing.T) {
	tx := newMockTxRunner()
	uc := NewRegenerateClientTokenUseCase(newMockClientRepo(), tx, newTestLogger())

	_, err := uc.Execute(context.Background(), RegenerateClientTokenCommand{SID: "cl_missing"})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, 0, tx.calls)
}

func TestRegenerateClientToken_EmptyID(t *testing.T) {
	uc := NewRegenerateClientTokenUseCase(newMockClientRepo(), newMockTxRunner(), newTestLogger())

	_, err := uc.Execute(context.Background(), RegenerateClientTokenCommand{})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}
