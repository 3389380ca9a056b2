package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
)

func TestListClients_Pagination(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	for i := 1; i <= 5; i++ {
		seedClient(t, repo, fmt.Sprintf("edge-gw-%02d", i), &now)
	}
	uc := NewListClientsUseCase(repo, newMockLedgerReader(), testOfflineAfter, newTestLogger())

	result, err := uc.Execute(context.Background(), ListClientsQuery{Page: 2, PageSize: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.Pages)
	assert.Len(t, result.Clients, 2)
}

func TestListClients_StatusFilter(t *testing.T) {
	repo := newMockClientRepo()
	ledger := newMockLedgerReader()
	now := time.Now()
	online := seedClient(t, repo, "edge-online", &now)
	updating := seedClient(t, repo, "edge-updating", &now)
	ledger.setOpen(updating.ID(), newOpenEntry(t, updating.ID()))
	seedClient(t, repo, "edge-offline", nil)
	uc := NewListClientsUseCase(repo, ledger, testOfflineAfter, newTestLogger())

	result, err := uc.Execute(context.Background(), ListClientsQuery{Status: string(fleet.StatusOnline)})

	require.NoError(t, err)
	require.Len(t, result.Clients, 1)
	assert.Equal(t, online.SID(), result.Clients[0].ID)
	// The filter applies after the page is fetched; totals stay unfiltered.
	assert.Equal(t, int64(3), result.Total)
}

func TestListClients_NameFilter(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	seedClient(t, repo, "edge-gw-01", &now)
	seedClient(t, repo, "edge-gw-02", &now)
	seedClient(t, repo, "relay-01", &now)
	uc := NewListClientsUseCase(repo, newMockLedgerReader(), testOfflineAfter, newTestLogger())

	result, err := uc.Execute(context.Background(), ListClientsQuery{Name: "gw"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Clients, 2)
}

func TestListClients_InvalidStatusFilter(t *testing.T) {
	uc := NewListClientsUseCase(newMockClientRepo(), newMockLedgerReader(), testOfflineAfter, newTestLogger())

	_, err := uc.Execute(context.Background(), ListClientsQuery{Status: "rebooting"})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}

func TestListClients_DefaultsAndClamps(t *testing.T) {
	repo := newMockClientRepo()
	now := time.Now()
	seedClient(t, repo, "edge-gw-01", &now)
	uc := NewListClientsUseCase(repo, newMockLedgerReader(), testOfflineAfter, newTestLogger())

	result, err := uc.Execute(context.Background(), ListClientsQuery{Page: 0, PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, result.Clients, 1)
}

func TestListClients_RepositoryError(t *testing.T) {
	repo := newMockClientRepo()
	repo.listErr = fmt.Errorf("connection refused")
	uc := NewListClientsUseCase(repo, newMockLedgerReader(), testOfflineAfter, newTestLogger())

	_, err := uc.Execute(context.Background(), ListClientsQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list clients")
}
