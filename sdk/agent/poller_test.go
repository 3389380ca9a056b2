package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"
)

// updateServer scripts the agent API for poller tests: the first check-in
// hands out an update, later ones return none, and reports are recorded.
type updateServer struct {
	t       *testing.T
	payload []byte

	mu       sync.Mutex
	handed   bool
	reports  []ReportResultRequest
	reported chan ReportResultRequest
}

func newUpdateServer(t *testing.T, payload []byte) *updateServer {
	return &updateServer{
		t:        t,
		payload:  payload,
		reported: make(chan ReportResultRequest, 4),
	}
}

func (s *updateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/agent/v1/checkin":
		s.mu.Lock()
		first := !s.handed
		s.handed = true
		s.mu.Unlock()

		if !first {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"action": "none"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"action":         "update",
				"target_version": "2.0.0",
				"artifact_url":   "/agent/v1/artifacts/2.0.0",
				"checksum":       sha256Hex(s.payload),
				"size":           len(s.payload),
			},
		})
	case "/agent/v1/artifacts/2.0.0":
		w.Write(s.payload)
	case "/agent/v1/result":
		var req ReportResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.t.Errorf("decode report: %v", err)
		}
		s.mu.Lock()
		s.reports = append(s.reports, req)
		s.mu.Unlock()
		s.reported <- req
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"status": "completed", "update_id": "upd_1"},
		})
	default:
		s.t.Errorf("unexpected path: %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestPollerAppliesUpdateAndReportsSuccess(t *testing.T) {
	payload := []byte("new version artifact")
	script := newUpdateServer(t, payload)
	srv := httptest.NewServer(script)
	defer srv.Close()

	var (
		mu        sync.Mutex
		gotPath   string
		gotTarget string
		gotBytes  []byte
	)
	applier := ApplierFunc(func(ctx context.Context, path string, instruction *CheckinResult) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mu.Lock()
		gotPath = path
		gotTarget = instruction.TargetVersion
		gotBytes = data
		mu.Unlock()
		return nil
	})

	client := NewClient(srv.URL, "ct_secret")
	poller := NewPoller(client, applier,
		WithInterval(10*time.Millisecond),
		WithJitter(0),
		WithDownloadDir(t.TempDir()),
		WithVersionFunc(func() string { return "1.0.0" }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	var report ReportResultRequest
	select {
	case report = <-script.reported:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for report")
	}
	cancel()
	<-done

	if !report.Success {
		t.Errorf("expected success report, got %+v", report)
	}
	if report.Version != "2.0.0" {
		t.Errorf("unexpected reported version: %q", report.Version)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotTarget != "2.0.0" {
		t.Errorf("applier saw target %q", gotTarget)
	}
	if !bytes.Equal(gotBytes, payload) {
		t.Error("applier saw different artifact bytes")
	}
	if _, err := os.Stat(gotPath); !os.IsNotExist(err) {
		t.Errorf("artifact file not cleaned up: %v", err)
	}
}

func TestPollerReportsFailure(t *testing.T) {
	payload := []byte("broken version artifact")
	script := newUpdateServer(t, payload)
	srv := httptest.NewServer(script)
	defer srv.Close()

	applier := ApplierFunc(func(ctx context.Context, path string, instruction *CheckinResult) error {
		return context.DeadlineExceeded
	})

	client := NewClient(srv.URL, "ct_secret")
	poller := NewPoller(client, applier,
		WithInterval(10*time.Millisecond),
		WithJitter(0),
		WithDownloadDir(t.TempDir()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	var report ReportResultRequest
	select {
	case report = <-script.reported:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for report")
	}
	cancel()
	<-done

	if report.Success {
		t.Errorf("expected failure report, got %+v", report)
	}
	if report.ErrorMessage == "" {
		t.Error("expected error_message to be set")
	}
	if report.Version != "2.0.0" {
		t.Errorf("unexpected reported version: %q", report.Version)
	}
}

func TestPollerSkipsApplyWhenNoUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"action": "none"},
		})
	}))
	defer srv.Close()

	applied := false
	applier := ApplierFunc(func(ctx context.Context, path string, instruction *CheckinResult) error {
		applied = true
		return nil
	})

	client := NewClient(srv.URL, "ct_secret")
	poller := NewPoller(client, applier, WithDownloadDir(t.TempDir()))

	poller.PollOnce(context.Background())

	if applied {
		t.Error("applier ran without an update instruction")
	}
}
