package usecases

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// mockClientRepo is an in-memory fleet.Repository for tests.
type mockClientRepo struct {
	mu          sync.RWMutex
	clients     map[uint]*fleet.Client
	nextID      uint
	createErr   error
	getErr      error
	updateErr   error
	deleteErr   error
	listErr     error
	lastSeenErr error

	updateCalls   int
	lastSeenCalls int
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[uint]*fleet.Client)}
}

// add seeds a client, assigning an ID when the entity has none.
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
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.clients {
		if existing.Name() == c.Name() {
			return fleet.ErrNameTaken
		}
	}
	m.nextID++
	_ = c.SetID(m.nextID)
	m.clients[c.ID()] = c
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
	if m.getErr != nil {
		return nil, m.getErr
	}
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
	m.updateCalls++
	m.clients[c.ID()] = c
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id uint) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return fleet.ErrClientNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockClientRepo) List(ctx context.Context, filter fleet.ListFilter) ([]*fleet.Client, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*fleet.Client
	for _, c := range m.clients {
		if filter.Name != "" && !strings.Contains(c.Name(), filter.Name) {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].ID() > all[j].ID()
		}
		return all[i].CreatedAt().After(all[j].CreatedAt())
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

// mockLedgerReader is a canned LedgerStatusReader for tests.
type mockLedgerReader struct {
	mu          sync.RWMutex
	open        map[uint]*rollout.UpdateLog
	terminal    map[uint]*rollout.UpdateLog
	openErr     error
	terminalErr error
}

func newMockLedgerReader() *mockLedgerReader {
	return &mockLedgerReader{
		open:     make(map[uint]*rollout.UpdateLog),
		terminal: make(map[uint]*rollout.UpdateLog),
	}
}

func (m *mockLedgerReader) setOpen(clientID uint, entry *rollout.UpdateLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[clientID] = entry
}

func (m *mockLedgerReader) setTerminal(clientID uint, entry *rollout.UpdateLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminal[clientID] = entry
}

func (m *mockLedgerReader) GetOpenByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open[clientID], nil
}

func (m *mockLedgerReader) GetLatestTerminalByClientID(ctx context.Context, clientID uint) (*rollout.UpdateLog, error) {
	if m.terminalErr != nil {
		return nil, m.terminalErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.terminal[clientID], nil
}

// mockLiveStatus is a canned LiveStatusReader for tests.
type mockLiveStatus struct {
	mu       sync.RWMutex
	statuses map[string]string
	getErr   error
}

func newMockLiveStatus() *mockLiveStatus {
	return &mockLiveStatus{statuses: make(map[string]string)}
}

func (m *mockLiveStatus) set(sid, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[sid] = status
}

func (m *mockLiveStatus) Get(ctx context.Context, clientSID string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statuses[clientSID], nil
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
