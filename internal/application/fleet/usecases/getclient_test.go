package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
)

const testOfflineAfter = 5 * time.Minute

// seedClient seeds a registered client, optionally stamping a last check-in.
func seedClient(t *testing.T, repo *mockClientRepo, name string, lastSeenAt *time.Time) *fleet.Client {
	t.Helper()
	client, err := fleet.NewClient(name, fleet.DefaultConfig())
	require.NoError(t, err)
	client.ClearAPIToken()
	if lastSeenAt != nil {
		client.RecordCheckin("", *lastSeenAt)
	}
	repo.add(client)
	return client
}

func newOpenEntry(t *testing.T, clientID uint) *rollout.UpdateLog {
	t.Helper()
	entry, err := rollout.NewUpdateLog(clientID, nil, "1.4.0")
	require.NoError(t, err)
	return entry
}

func newFailedEntry(t *testing.T, clientID uint) *rollout.UpdateLog {
	t.Helper()
	entry, err := rollout.NewUpdateLog(clientID, nil, "1.4.0")
	require.NoError(t, err)
	require.NoError(t, entry.MarkInProgress())
	require.NoError(t, entry.Fail("health check failed"))
	return entry
}

func TestGetClient_Success(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	client := seedClient(t, repo, "edge-gw-01", &now)
	live := newMockLiveStatus()
	live.set(client.SID(), "healthy")
	uc := NewGetClientUseCase(repo, newMockLedgerReader(), live, testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, client.SID(), dto.ID)
	assert.Equal(t, "edge-gw-01", dto.Name)
	assert.Equal(t, string(fleet.StatusOnline), dto.Status)
	assert.Equal(t, "healthy", dto.LiveStatus)
	require.NotNil(t, dto.Config)
	assert.Equal(t, fleet.DefaultConfig(), *dto.Config)
	require.NotNil(t, dto.LastSeenAt)
}

func TestGetClient_StatusUpdating(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	client := seedClient(t, repo, "edge-gw-01", &now)
	ledger := newMockLedgerReader()
	ledger.setOpen(client.ID(), newOpenEntry(t, client.ID()))
	uc := NewGetClientUseCase(repo, ledger, newMockLiveStatus(), testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, string(fleet.StatusUpdating), dto.Status)
}

func TestGetClient_StatusError(t *testing.T) {
	repo := newMockClientRepo()
	seen := time.Now().Add(-time.Minute)
	client := seedClient(t, repo, "edge-gw-01", &seen)
	ledger := newMockLedgerReader()
	ledger.setTerminal(client.ID(), newFailedEntry(t, client.ID()))
	uc := NewGetClientUseCase(repo, ledger, newMockLiveStatus(), testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, string(fleet.StatusError), dto.Status)
}

func TestGetClient_StatusClearsAfterCheckin(t *testing.T) {
	repo := newMockClientRepo()
	client := seedClient(t, repo, "edge-gw-01", nil)
	ledger := newMockLedgerReader()
	failed := newFailedEntry(t, client.ID())
	ledger.setTerminal(client.ID(), failed)
	// Heard from after the failure; the error signal clears.
	client.RecordCheckin("", failed.CompletedAt().Add(time.Second))
	uc := NewGetClientUseCase(repo, ledger, newMockLiveStatus(), testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, string(fleet.StatusOnline), dto.Status)
}

func TestGetClient_StalenessWins(t *testing.T) {
	repo := newMockClientRepo()
	stale := time.Now().Add(-time.Hour)
	client := seedClient(t, repo, "edge-gw-01", &stale)
	ledger := newMockLedgerReader()
	ledger.setOpen(client.ID(), newOpenEntry(t, client.ID()))
	uc := NewGetClientUseCase(repo, ledger, newMockLiveStatus(), testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, string(fleet.StatusOffline), dto.Status)
}

func TestGetClient_NeverSeen(t *testing.T) {
	repo := newMockClientRepo()
	client := seedClient(t, repo, "edge-gw-01", nil)
	uc := NewGetClientUseCase(repo, newMockLedgerReader(), newMockLiveStatus(), testOfflineAfter, newTestLogger())

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Equal(t, string(fleet.StatusOffline), dto.Status)
	assert.Nil(t, dto.LastSeenAt)
}

func TestGetClient_LiveStatusErrorIsNonFatal(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	client := seedClient(t, repo, "edge-gw-01", &now)
	live := newMockLiveStatus()
	live.getErr = fmt.Errorf("connection refused")
	log := newTestLogger()
	uc := NewGetClientUseCase(repo, newMockLedgerReader(), live, testOfflineAfter, log)

	dto, err := uc.Execute(context.Background(), GetClientQuery{SID: client.SID()})

	require.NoError(t, err)
	assert.Empty(t, dto.LiveStatus)
	assert.True(t, log.has("WARN", "failed to read live agent status"))
}

func TestGetClient_NotFound(t *testing.T) {
	repo := newMockClientRepo()
	uc := NewGetClientUseCase(repo, newMockLedgerReader(), newMockLiveStatus(), testOfflineAfter, newTestLogger())

	_, err := uc.Execute(context.Background(), GetClientQuery{SID: "cl_missing"})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestGetClient_EmptyID(t *testing.T) {
	uc := NewGetClientUseCase(newMockClientRepo(), newMockLedgerReader(), newMockLiveStatus(), testOfflineAfter, newTestLogger())

	_, err := uc.Execute(context.Background(), GetClientQuery{SID: ""})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}
