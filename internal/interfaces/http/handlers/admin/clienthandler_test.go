package admin

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fleetUsecases "github.com/drover-dev/drover/internal/application/fleet/usecases"
	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/interfaces/http/handlers/testutil"
	"github.com/drover-dev/drover/internal/shared/errors"
)

// =====================================================================
// Mock use cases for ClientHandler
// =====================================================================

type mockRegisterClientUC struct {
	result *fleetUsecases.RegisterClientResult
	err    error
}

func (m *mockRegisterClientUC) Execute(_ context.Context, _ fleetUsecases.RegisterClientCommand) (*fleetUsecases.RegisterClientResult, error) {
	return m.result, m.err
}

type mockListClientsUC struct {
	result *fleetUsecases.ListClientsResult
	err    error
}

func (m *mockListClientsUC) Execute(_ context.Context, _ fleetUsecases.ListClientsQuery) (*fleetUsecases.ListClientsResult, error) {
	return m.result, m.err
}

type mockGetClientUC struct {
	result *fleetUsecases.ClientDTO
	err    error
}

func (m *mockGetClientUC) Execute(_ context.Context, _ fleetUsecases.GetClientQuery) (*fleetUsecases.ClientDTO, error) {
	return m.result, m.err
}

type mockUpdateClientConfigUC struct {
	result *fleetUsecases.UpdateClientConfigResult
	err    error
}

func (m *mockUpdateClientConfigUC) Execute(_ context.Context, _ fleetUsecases.UpdateClientConfigCommand) (*fleetUsecases.UpdateClientConfigResult, error) {
	return m.result, m.err
}

type mockRegenerateClientTokenUC struct {
	result *fleetUsecases.RegenerateClientTokenResult
	err    error
}

func (m *mockRegenerateClientTokenUC) Execute(_ context.Context, _ fleetUsecases.RegenerateClientTokenCommand) (*fleetUsecases.RegenerateClientTokenResult, error) {
	return m.result, m.err
}

type mockDeleteClientUC struct {
	err error
}

func (m *mockDeleteClientUC) Execute(_ context.Context, _ fleetUsecases.DeleteClientCommand) error {
	return m.err
}

// =====================================================================
// Test constants
// =====================================================================

// Valid SIDs are "cl_" + 12 alphanumeric characters.
const (
	testClientSID  = "cl_xK9mP2vL3nQ7"
	testClientSID2 = "cl_aB3cD4eF5gH6"
)

// =====================================================================
// Test helpers
// =====================================================================

func newTestClientHandler(
	registerUC registerClientUseCase,
	listUC listClientsUseCase,
	getUC getClientUseCase,
	updateConfigUC updateClientConfigUseCase,
	regenerateTokenUC regenerateClientTokenUseCase,
	deleteUC deleteClientUseCase,
) *ClientHandler {
	return NewClientHandler(
		registerUC, listUC, getUC, updateConfigUC, regenerateTokenUC, deleteUC,
		testutil.NewMockLogger(),
	)
}

// =====================================================================
// TestClientHandler_RegisterClient
// =====================================================================

func TestClientHandler_RegisterClient_Success(t *testing.T) {
	mockResult := &fleetUsecases.RegisterClientResult{
		ID:        testClientSID,
		Name:      "web-01",
		Token:     "drv_secret_token",
		Config:    fleet.DefaultConfig(),
		CreatedAt: "2025-01-15T10:00:00Z",
	}
	handler := newTestClientHandler(&mockRegisterClientUC{result: mockResult}, nil, nil, nil, nil, nil)

	reqBody := RegisterClientRequest{Name: "web-01"}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/clients", reqBody)

	handler.RegisterClient(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientHandler_RegisterClient_BindingError(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, nil)

	// Missing required name
	reqBody := map[string]string{"description": "test"}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/clients", reqBody)

	handler.RegisterClient(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestClientHandler_RegisterClient_NameTaken(t *testing.T) {
	mockUC := &mockRegisterClientUC{err: errors.NewConflictError("client with this name already exists")}
	handler := newTestClientHandler(mockUC, nil, nil, nil, nil, nil)

	reqBody := RegisterClientRequest{Name: "web-01"}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/clients", reqBody)

	handler.RegisterClient(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

// =====================================================================
// TestClientHandler_ListClients
// =====================================================================

func TestClientHandler_ListClients_Success(t *testing.T) {
	mockResult := &fleetUsecases.ListClientsResult{
		Clients: []*fleetUsecases.ClientDTO{
			{ID: testClientSID, Name: "web-01", Status: "online"},
			{ID: testClientSID2, Name: "web-02", Status: "offline"},
		},
		Total: 2,
		Page:  1,
		Pages: 1,
	}
	handler := newTestClientHandler(nil, &mockListClientsUC{result: mockResult}, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/clients", nil)

	handler.ListClients(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientHandler_ListClients_UseCaseError(t *testing.T) {
	mockUC := &mockListClientsUC{err: stderrors.New("database error")}
	handler := newTestClientHandler(nil, mockUC, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/clients", nil)

	handler.ListClients(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

// =====================================================================
// TestClientHandler_GetClient
// =====================================================================

func TestClientHandler_GetClient_Success(t *testing.T) {
	current := "1.0.0"
	mockResult := &fleetUsecases.ClientDTO{
		ID:             testClientSID,
		Name:           "web-01",
		Status:         "online",
		CurrentVersion: &current,
	}
	handler := newTestClientHandler(nil, nil, &mockGetClientUC{result: mockResult}, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/clients/"+testClientSID, nil)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.GetClient(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientHandler_GetClient_InvalidID(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/clients/invalid_id", nil)
	testutil.SetURLParam(c, "sid", "invalid_id")

	handler.GetClient(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestClientHandler_GetClient_NotFound(t *testing.T) {
	mockUC := &mockGetClientUC{err: errors.NewNotFoundError("client not found", testClientSID)}
	handler := newTestClientHandler(nil, nil, mockUC, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/clients/"+testClientSID, nil)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.GetClient(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

// =====================================================================
// TestClientHandler_UpdateClientConfig
// =====================================================================

func TestClientHandler_UpdateClientConfig_Success(t *testing.T) {
	mockResult := &fleetUsecases.UpdateClientConfigResult{
		ID:        testClientSID,
		Config:    fleet.Config{ServiceDir: "/opt/app", RestartCommand: "systemctl restart app"},
		UpdatedAt: "2025-01-15T12:00:00Z",
	}
	handler := newTestClientHandler(nil, nil, nil, &mockUpdateClientConfigUC{result: mockResult}, nil, nil)

	reqBody := fleet.Config{ServiceDir: "/opt/app", RestartCommand: "systemctl restart app"}
	c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/clients/"+testClientSID+"/config", reqBody)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.UpdateClientConfig(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientHandler_UpdateClientConfig_InvalidID(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, nil)

	reqBody := fleet.Config{ServiceDir: "/opt/app"}
	c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/clients/bad_id/config", reqBody)
	testutil.SetURLParam(c, "sid", "bad_id")

	handler.UpdateClientConfig(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_UpdateClientConfig_NotFound(t *testing.T) {
	mockUC := &mockUpdateClientConfigUC{err: errors.NewNotFoundError("client not found", testClientSID)}
	handler := newTestClientHandler(nil, nil, nil, mockUC, nil, nil)

	reqBody := fleet.Config{ServiceDir: "/opt/app"}
	c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/clients/"+testClientSID+"/config", reqBody)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.UpdateClientConfig(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =====================================================================
// TestClientHandler_RegenerateToken
// =====================================================================

func TestClientHandler_RegenerateToken_Success(t *testing.T) {
	mockResult := &fleetUsecases.RegenerateClientTokenResult{
		ID:    testClientSID,
		Token: "drv_new_secret_token",
	}
	handler := newTestClientHandler(nil, nil, nil, nil, &mockRegenerateClientTokenUC{result: mockResult}, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/clients/"+testClientSID+"/token", nil)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.RegenerateToken(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	err := testutil.ParseResponse(w, &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClientHandler_RegenerateToken_InvalidID(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/clients/bad_id/token", nil)
	testutil.SetURLParam(c, "sid", "bad_id")

	handler.RegenerateToken(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// TestClientHandler_DeleteClient
// =====================================================================

func TestClientHandler_DeleteClient_Success(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, &mockDeleteClientUC{err: nil})

	c, _ := testutil.NewTestContext(http.MethodDelete, "/api/v1/clients/"+testClientSID, nil)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.DeleteClient(c)

	// NoContentResponse sets status via c.Status() which may not flush to ResponseRecorder,
	// so we check the gin writer's status directly.
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

func TestClientHandler_DeleteClient_InvalidID(t *testing.T) {
	handler := newTestClientHandler(nil, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/clients/bad_id", nil)
	testutil.SetURLParam(c, "sid", "bad_id")

	handler.DeleteClient(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_DeleteClient_NotFound(t *testing.T) {
	mockUC := &mockDeleteClientUC{err: errors.NewNotFoundError("client not found", testClientSID)}
	handler := newTestClientHandler(nil, nil, nil, nil, nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/clients/"+testClientSID, nil)
	testutil.SetURLParam(c, "sid", testClientSID)

	handler.DeleteClient(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
