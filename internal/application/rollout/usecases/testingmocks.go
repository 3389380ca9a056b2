package usecases

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// mockClientRepo is an in-memory fleet.Repository for tests.
type mockClientRepo struct {
	mu          sync.RWMutex
	clients     map[uint]*fleet.Client
	nextID      uint
	getErr      error
	updateErr   error
	lastSeenErr error

	lastSeenCalls int
	lockCalls     int
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[uint]*fleet.Client)}
}

func (m *mockClientRepo) add(c *fleet.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID() == 0 {
		m.nextID++
		_ = c.SetID(m.nextID)
	}
	m.clients[c.ID()] = c
}

func (m *mockClientRepo) Create(ctx context.Context, c *fleet.Client) error {
	m.add(c)
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id uint) (*fleet.Client, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[id], nil
}

func (m *mockClientRepo) GetByIDForUpdate(ctx context.Context, id uint) (*fleet.Client, error) {
	m.mu.Lock()
	m.lockCalls++
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *mockClientRepo) GetBySID(ctx context.Context, sid string) (*fleet.Client, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.SID() == sid {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*fleet.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.TokenHash() == tokenHash {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepo) Update(ctx context.Context, c *fleet.Client) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID()] = c
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return fleet.ErrClientNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockClientRepo) List(ctx context.Context, filter fleet.ListFilter) ([]*fleet.Client, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*fleet.Client
	for _, c := range m.clients {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() > all[j].ID() })
	return all, int64(len(all)), nil
}

func (m *mockClientRepo) UpdateLastSeen(ctx context.Context, id uint, seenAt time.Time, currentVersion *string) error {
	if m.lastSeenErr != nil {
		return m.lastSeenErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return fleet.ErrClientNotFound
	}
	m.lastSeenCalls++
	reported := ""
	if currentVersion != nil {
		reported = *currentVersion
	}
	c.RecordCheckin(reported, seenAt)
	return nil
}

// mockLedgerRepo is an in-memory rollout.Repository for tests.
type mockLedgerRepo struct {
	mu        sync.RWMutex
	entries   map[uint]*rollout.UpdateLog
	nextID    uint
	createErr error
	getErr    error
	updateErr error
	listErr   error
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{entries: make(map[uint]*rollout.UpdateLog)}
}

func (m *mockLedgerRepo) add(entry *rollout.UpdateLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID() == 0 {
		m.nextID++
		_ = entry.SetID(m.nextID)
	}
	m.entries[entry.ID()] = entry
}

func (m *mockLedgerRepo) Create(ctx context.Context, entry *rollout.UpdateLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.add(entry)
	return nil
}

func (m *mockLedgerRepo) GetByID(ctx context.Context, id uint) (*rollout.UpdateLog, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id], nil
}

func (m *mockLedgerRepo) GetBySID(ctx context.Context, sid string) (*rollout.UpdateLog, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.entries {
		if entry.SID() == sid {
			return entry, nil
		}
	}
	return nil, nil
}

func (m *mockLedgerRepo) GetOpenByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open *rollout.UpdateLog
	for _, entry := range m.entries {
		if entry.ClientID() != clientID || !entry.Status().IsOpen() {
			continue
		}
		if open == nil || entry.ID() > open.ID() {
			open = entry
		}
	}
	return open, nil
}

func (m *mockLedgerRepo) GetLatestTerminalByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *rollout.UpdateLog
	for _, entry := range m.entries {
		if entry.ClientID() != clientID || !entry.Status().IsTerminal() {
			continue
		}
		if latest == nil || entry.ID() > latest.ID() {
			latest = entry
		}
	}
	return latest, nil
}

func (m *mockLedgerRepo) Update(ctx context.Context, entry *rollout.UpdateLog) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID()] = entry
	return nil
}

func (m *mockLedgerRepo) List(ctx context.Context, filter rollout.ListFilter) ([]*rollout.UpdateLog, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*rollout.UpdateLog
	for _, entry := range m.entries {
		if filter.ClientID != 0 && entry.ClientID() != filter.ClientID {
			continue
		}
		if filter.Status != "" && entry.Status() != filter.Status {
			continue
		}
		all = append(all, entry)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartedAt().Equal(all[j].StartedAt()) {
			return all[i].ID() > all[j].ID()
		}
		return all[i].StartedAt().After(all[j].StartedAt())
	})
	total := int64(len(all))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// mockVersionReader is a canned VersionReader for tests.
type mockVersionReader struct {
	mu       sync.RWMutex
	versions map[string]*release.Version
	getErr   error
}

func newMockVersionReader() *mockVersionReader {
	return &mockVersionReader{versions: make(map[string]*release.Version)}
}

func (m *mockVersionReader) add(v *release.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.Version()] = v
}

func (m *mockVersionReader) GetByVersion(ctx context.Context, version string) (*release.Version, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[version], nil
}

// mockLiveStatus records live status writes for tests.
type mockLiveStatus struct {
	mu       sync.RWMutex
	statuses map[string]string
	setErr   error
}

func newMockLiveStatus() *mockLiveStatus {
	return &mockLiveStatus{statuses: make(map[string]string)}
}

func (m *mockLiveStatus) Set(ctx context.Context, clientSID, status string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[clientSID] = status
	return nil
}

func (m *mockLiveStatus) get(clientSID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statuses[clientSID]
}

// mockTxRunner runs the transaction body directly.
type mockTxRunner struct {
	mu    sync.Mutex
	err   error
	calls int
}

func newMockTxRunner() *mockTxRunner {
	return &mockTxRunner{}
}

func (m *mockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(ctx)
}

// testLogger records log calls so tests can assert on emitted levels.
type testLogger struct {
	mu      sync.Mutex
	entries []testLogEntry
}

type testLogEntry struct {
	level string
	msg   string
}

func newTestLogger() *testLogger {
	return &testLogger{}
}

func (l *testLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, testLogEntry{level: level, msg: msg})
}

// has reports whether a log with the level and a message containing the
// substring was recorded.
func (l *testLogger) has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && strings.Contains(e.msg, substr) {
			return true
		}
	}
	return false
}

func (l *testLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg) }
func (l *testLogger) Info(msg string, args ...any)  { l.record("INFO", msg) }
func (l *testLogger) Warn(msg string, args ...any)  { l.record("WARN", msg) }
func (l *testLogger) Error(msg string, args ...any) { l.record("ERROR", msg) }
func (l *testLogger) Fatal(msg string, args ...any) { l.record("FATAL", msg) }

func (l *testLogger) With(args ...any) logger.Interface  { return l }
func (l *testLogger) Named(name string) logger.Interface { return l }

func (l *testLogger) Debugw(msg string, keysAndValues ...interface{}) { l.record("DEBUG", msg) }
func (l *testLogger) Infow(msg string, keysAndValues ...interface{})  { l.record("INFO", msg) }
func (l *testLogger) Warnw(msg string, keysAndValues ...interface{})  { l.record("WARN", msg) }
func (l *testLogger) Errorw(msg string, keysAndValues ...interface{}) { l.record("ERROR", msg) }
func (l *testLogger) Fatalw(msg string, keysAndValues ...interface{}) { l.record("FATAL", msg) }
