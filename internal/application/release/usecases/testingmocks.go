package usecases

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/infrastructure/artifact"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// mockVersionRepo is an in-memory release.Repository for tests.
type mockVersionRepo struct {
	mu        sync.RWMutex
	versions  map[uint]*release.Version
	nextID    uint
	createErr error
	getErr    error
	updateErr error
	listErr   error
	existsErr error
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{versions: make(map[uint]*release.Version)}
}

// add seeds a version, assigning an ID when the entity has none.
func (m *mockVersionRepo) add(v *release.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID() == 0 {
		m.nextID++
		_ = v.SetID(m.nextID)
	}
	m.versions[v.ID()] = v
}

func (m *mockVersionRepo) Create(ctx context.Context, v *release.Version) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.versions {
		if existing.Version() == v.Version() {
			return release.ErrVersionExists
		}
	}
	m.nextID++
	_ = v.SetID(m.nextID)
	m.versions[v.ID()] = v
	return nil
}

func (m *mockVersionRepo) GetByID(ctx context.Context, id uint) (*release.Version, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[id], nil
}

func (m *mockVersionRepo) GetBySID(ctx context.Context, sid string) (*release.Version, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.SID() == sid {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockVersionRepo) GetByVersion(ctx context.Context, version string) (*release.Version, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.Version() == version {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockVersionRepo) Update(ctx context.Context, v *release.Version) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.ID()] = v
	return nil
}

func (m *mockVersionRepo) List(ctx context.Context, filter release.ListFilter) ([]*release.Version, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*release.Version
	for _, v := range m.versions {
		if filter.ActiveOnly && !v.IsActive() {
			continue
		}
		all = append(all, v)
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

func (m *mockVersionRepo) ExistsByVersion(ctx context.Context, version string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions {
		if v.Version() == version {
			return true, nil
		}
	}
	return false, nil
}

// mockArtifactStore is an in-memory artifact.Store for tests.
type mockArtifactStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saveErr error
	openErr error
	removed []string
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{blobs: make(map[string][]byte)}
}

func (m *mockArtifactStore) Save(ctx context.Context, filename string, r io.Reader) (*artifact.SaveResult, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[filename] = data
	sum := sha256.Sum256(data)
	return &artifact.SaveResult{
		Path:     filename,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

func (m *mockArtifactStore) Open(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if m.openErr != nil {
		return nil, 0, m.openErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, 0, fmt.Errorf("artifact %s: %w", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *mockArtifactStore) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockArtifactStore) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[path]
	return ok
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
