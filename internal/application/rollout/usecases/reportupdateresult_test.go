package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
)

type reportFixture struct {
	clients *mockClientRepo
	ledger  *mockLedgerRepo
	tx      *mockTxRunner
	log     *testLogger
	uc      *ReportUpdateResultUseCase
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		clients: newMockClientRepo(),
		ledger:  newMockLedgerRepo(),
		tx:      newMockTxRunner(),
		log:     newTestLogger(),
	}
	f.uc = NewReportUpdateResultUseCase(f.clients, f.ledger, f.tx, f.log)
	return f
}

func (f *reportFixture) report(client *fleet.Client, success bool, version, errorMessage string) (*OutcomeResult, error) {
	return f.uc.Execute(context.Background(), ReportUpdateResultCommand{
		ClientID:     client.ID(),
		ClientSID:    client.SID(),
		Success:      success,
		Version:      version,
		ErrorMessage: errorMessage,
	})
}

// seedHandedOutEntry opens an in_progress entry, mimicking deploy + hand-out.
func seedHandedOutEntry(t *testing.T, ledger *mockLedgerRepo, client *fleet.Client, toVersion string) *rollout.UpdateLog {
	t.Helper()
	entry := seedOpenEntry(t, ledger, client, toVersion)
	require.NoError(t, entry.MarkInProgress())
	return entry
}

func TestReportUpdateResult_Success(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	result, err := f.report(client, true, "1.4.0", "")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusSuccess), result.Status)
	assert.Equal(t, entry.SID(), result.UpdateID)

	assert.Equal(t, rollout.StatusSuccess, entry.Status())
	require.NotNil(t, entry.CompletedAt())
	require.NotNil(t, client.CurrentVersion())
	assert.Equal(t, "1.4.0", *client.CurrentVersion())
	assert.Nil(t, client.TargetVersion())
}

func TestReportUpdateResult_SuccessWithoutVersion(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	result, err := f.report(client, true, "", "")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusSuccess), result.Status)
	assert.Equal(t, entry.SID(), result.UpdateID)
}

func TestReportUpdateResult_FailureOpensRollback(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	result, err := f.report(client, false, "1.4.0", "health check timed out")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusFailed), result.Status)
	assert.Equal(t, entry.SID(), result.UpdateID)

	assert.Equal(t, rollout.StatusFailed, entry.Status())
	require.NotNil(t, entry.ErrorMessage())
	assert.Equal(t, "health check timed out", *entry.ErrorMessage())

	rb, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	require.NotNil(t, rb)
	assert.True(t, rb.IsRollback())
	assert.Equal(t, rollout.StatusPending, rb.Status())
	require.NotNil(t, rb.FromVersion())
	assert.Equal(t, "1.4.0", *rb.FromVersion())
	assert.Equal(t, "1.2.0", rb.ToVersion())

	require.NotNil(t, client.TargetVersion())
	assert.Equal(t, "1.2.0", *client.TargetVersion())
	require.NotNil(t, client.CurrentVersion())
	assert.Equal(t, "1.2.0", *client.CurrentVersion())
	assert.True(t, f.log.has("INFO", "rollback opened after failed update"))
}

func TestReportUpdateResult_FailureWithRollbackDisabled(t *testing.T) {
	f := newReportFixture()
	config := fleet.DefaultConfig()
	config.RollbackOnFailure = false
	client, err := fleet.NewClient("edge-gw-01", config)
	require.NoError(t, err)
	client.ClearAPIToken()
	client.RecordCheckin("1.2.0", time.Now())
	f.clients.add(client)
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	result, err := f.report(client, false, "1.4.0", "apply failed")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusFailed), result.Status)
	assert.Equal(t, rollout.StatusFailed, entry.Status())

	open, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.Nil(t, client.TargetVersion())
}

func TestReportUpdateResult_FailureWithoutPriorVersion(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	result, err := f.report(client, false, "1.4.0", "apply failed")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusFailed), result.Status)
	assert.Equal(t, rollout.StatusFailed, entry.Status())

	// Nothing to roll back to; the chain ends here.
	open, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.Nil(t, client.TargetVersion())
}

func TestReportUpdateResult_RollbackSuccessIsRolledBack(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	failed := seedHandedOutEntry(t, f.ledger, client, "1.4.0")
	_, err := f.report(client, false, "1.4.0", "health check timed out")
	require.NoError(t, err)

	// The agent polls, gets the rollback instruction handed out, applies it.
	rb, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	require.NotNil(t, rb)
	require.NoError(t, rb.MarkInProgress())

	result, err := f.report(client, true, "1.2.0", "")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusRolledBack), result.Status)
	assert.Equal(t, rb.SID(), result.UpdateID)
	assert.Equal(t, rollout.StatusRolledBack, rb.Status())
	assert.Equal(t, rollout.StatusFailed, failed.Status())
	require.NotNil(t, client.CurrentVersion())
	assert.Equal(t, "1.2.0", *client.CurrentVersion())
	assert.Nil(t, client.TargetVersion())
}

func TestReportUpdateResult_FailedRollbackEndsChain(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	seedHandedOutEntry(t, f.ledger, client, "1.4.0")
	_, err := f.report(client, false, "1.4.0", "health check timed out")
	require.NoError(t, err)
	rb, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	require.NotNil(t, rb)
	require.NoError(t, rb.MarkInProgress())

	result, err := f.report(client, false, "1.2.0", "rollback install failed")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusFailed), result.Status)
	assert.Equal(t, rollout.StatusFailed, rb.Status())

	// No rollback of a rollback.
	open, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.Nil(t, client.TargetVersion())
	assert.Equal(t, int64(2), countEntries(t, f.ledger))
}

func TestReportUpdateResult_DuplicateReturnsStoredOutcome(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")
	first, err := f.report(client, true, "1.4.0", "")
	require.NoError(t, err)

	second, err := f.report(client, true, "1.4.0", "")

	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, entry.SID(), second.UpdateID)
	assert.Equal(t, int64(1), countEntries(t, f.ledger))
}

func TestReportUpdateResult_DuplicateWithoutVersionMatches(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	seedHandedOutEntry(t, f.ledger, client, "1.4.0")
	_, err := f.report(client, false, "1.4.0", "apply failed")
	require.NoError(t, err)
	// Close the rollback entry too; it becomes the latest terminal entry.
	rb, err := f.ledger.GetOpenByClientID(context.Background(), client.ID())
	require.NoError(t, err)
	require.NotNil(t, rb)
	require.NoError(t, rb.MarkInProgress())
	_, err = f.report(client, true, "1.2.0", "")
	require.NoError(t, err)

	result, err := f.report(client, true, "", "")

	require.NoError(t, err)
	assert.Equal(t, string(rollout.StatusRolledBack), result.Status)
	assert.Equal(t, rb.SID(), result.UpdateID)
}

func TestReportUpdateResult_ContradictoryReportRejected(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")
	_, err := f.report(client, true, "1.4.0", "")
	require.NoError(t, err)

	_, err = f.report(client, false, "1.4.0", "actually it broke")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	assert.Contains(t, appErr.Message, "contradicts")

	// The stored outcome is untouched.
	assert.Equal(t, rollout.StatusSuccess, entry.Status())
	assert.Equal(t, int64(1), countEntries(t, f.ledger))
}

func TestReportUpdateResult_NoEntriesAtAll(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")

	_, err := f.report(client, true, "1.4.0", "")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	assert.Contains(t, appErr.Message, "no active update")
}

func TestReportUpdateResult_PendingEntryNotReportable(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedOpenEntry(t, f.ledger, client, "1.4.0")

	_, err := f.report(client, true, "1.4.0", "")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, rollout.StatusPending, entry.Status())
}

func TestReportUpdateResult_MisdirectedReportIgnoresOpenEntry(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	entry := seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	_, err := f.report(client, true, "9.9.9", "")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
	assert.Equal(t, rollout.StatusInProgress, entry.Status())
}

func TestReportUpdateResult_UnknownClient(t *testing.T) {
	f := newReportFixture()

	_, err := f.uc.Execute(context.Background(), ReportUpdateResultCommand{ClientID: 404, ClientSID: "cl_gone", Success: true})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeUnauthorized, appErr.Type)
}

func TestReportUpdateResult_InvalidVersion(t *testing.T) {
	f := newReportFixture()
	client := seedRolloutClient(t, f.clients, "edge-gw-01", "1.2.0")
	seedHandedOutEntry(t, f.ledger, client, "1.4.0")

	_, err := f.report(client, true, "latest", "")

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}
