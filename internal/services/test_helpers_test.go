package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/roadrulez/roadrulez/internal/background"
	"github.com/roadrulez/roadrulez/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner() *background.Runner {
	return background.NewRunner(testLogger(), 5*time.Second)
}

// flush waits for all fire-and-forget tasks submitted so far.
func flush(t *testing.T, r *background.Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("background tasks did not drain: %v", err)
	}
}

// memAttemptStore implements LoginAttemptStore in memory with the same
// increment-and-lock semantics as the SQL upsert.
type memAttemptStore struct {
	mu      sync.Mutex
	records map[string]*models.LoginAttempt

	findErr   error
	recordErr error

	deleteStaleCalls int
	resetCalls       int
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{records: make(map[string]*models.LoginAttempt)}
}

func (m *memAttemptStore) Find(ctx context.Context, identifier string) (*models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	rec, ok := m.records[identifier]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memAttemptStore) RecordFailure(ctx context.Context, identifier, ip, email string, maxAttempts int, lockout time.Duration) (*models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return nil, m.recordErr
	}

	now := time.Now()
	rec, ok := m.records[identifier]
	if !ok {
		rec = &models.LoginAttempt{Identifier: identifier, IPAddress: ip, Email: email}
		m.records[identifier] = rec
	}

	rec.FailCount++
	if rec.FailCount >= maxAttempts {
		until := now.Add(lockout)
		rec.LockedUntil = &until
	} else {
		rec.LockedUntil = nil
	}
	rec.LastAttempt = now

	cp := *rec
	return &cp, nil
}

func (m *memAttemptStore) ResetSuccess(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	if rec, ok := m.records[identifier]; ok {
		rec.FailCount = 0
		rec.LockedUntil = nil
		rec.LastAttempt = time.Now()
	}
	return nil
}

func (m *memAttemptStore) DeleteStale(ctx context.Context, retention time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteStaleCalls++

	cutoff := time.Now().Add(-retention)
	var deleted int64
	for id, rec := range m.records {
		if rec.LastAttempt.Before(cutoff) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// seed installs a record directly, bypassing the failure path.
func (m *memAttemptStore) seed(rec *models.LoginAttempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Identifier] = rec
}

func (m *memAttemptStore) get(identifier string) *models.LoginAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[identifier]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// mockUserStore implements UserStore for testing
type mockUserStore struct {
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)

	mu    sync.Mutex
	calls int
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockAuditStore implements AuditLogStore for testing
type mockAuditStore struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	err     error
}

func (m *mockAuditStore) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.entries = append(m.entries, log)
	return log, nil
}

func (m *mockAuditStore) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}
