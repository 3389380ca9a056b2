package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
)

func TestUpdateClientConfig_Success(t *testing.T) {
	repo := newMockClientRepo()
	client := seedClient(t, repo, "edge-gw-01", nil)
	tx := newMockTxRunner()
	uc := NewUpdateClientConfigUseCase(repo, tx, newTestLogger())
	config := fleet.Config{
		HealthCheckURL:         "http://127.0.0.1:9000/healthz",
		HealthCheckTimeoutSecs: 10,
		RollbackOnFailure:      false,
	}

	result, err := uc.Execute(context.Background(), UpdateClientConfigCommand{SID: client.SID(), Config: config})

	require.NoError(t, err)
	assert.Equal(t, client.SID(), result.ID)
	assert.Equal(t, config, result.Config)
	assert.Equal(t, 1, tx.calls)

	stored, err := repo.GetBySID(context.Background(), client.SID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, config, stored.Config())
}

func TestUpdateClientConfig_InvalidConfig(t *testing.T) {
	repo := newMockClientRepo()
	client := seedClient(t, repo, "edge-gw-01", nil)
	tx := newMockTxRunner()
	uc := NewUpdateClientConfigUseCase(repo, tx, newTestLogger())

	for _, config := range []fleet.Config{
		{HealthCheckTimeoutSecs: -1},
		{HealthCheckURL: "ftp://files.local"},
	} {
		_, err := uc.Execute(context.Background(), UpdateClientConfigCommand{SID: client.SID(), Config: config})

		require.Error(t, err)
		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	}
	assert.Equal(t, 0, tx.calls)
}

func TestUpdateClientConfig_NotFound(t *testing.T) {
	tx := newMockTxRunner()
	uc := NewUpdateClientConfigUseCase(newMockClientRepo(), tx, newTestLogger())

	_, err := uc.Execute(context.Background(), UpdateClientConfigCommand{SID: "cl_missing", Config: fleet.DefaultConfig()})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
	assert.Equal(t, 0, tx.calls)
}
