package credcore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// mockStore is an in-memory UserStore for in-package tests. The memstore
// package cannot be imported here without a cycle, so the tests carry their
// own minimal implementation with injectable failures.
type mockStore struct {
	mu    sync.Mutex
	users map[string]*UserRecord
	seq   int

	// forced errors, checked before any map access
	failCreate error
	failLookup error
	failRecord error
	failClear  error
	failUpdate error

	// afterLookup, when set, runs after the lookup snapshot is taken so a
	// test can interleave a write before the follow-up store call.
	afterLookup func()
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[string]*UserRecord)}
}

func (m *mockStore) Create(_ context.Context, input CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return UserRecord{}, m.failCreate
	}
	if _, exists := m.users[input.Username]; exists {
		return UserRecord{}, ErrStoreDuplicateUser
	}
	m.seq++
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	rec := UserRecord{
		UserID:     fmt.Sprintf("u%d", m.seq),
		Username:   input.Username,
		SecretHash: input.SecretHash,
		CreatedAt:  createdAt,
	}
	m.users[input.Username] = &rec
	return rec, nil
}

func (m *mockStore) Lookup(_ context.Context, username string) (UserRecord, error) {
	m.mu.Lock()
	if m.failLookup != nil {
		m.mu.Unlock()
		return UserRecord{}, m.failLookup
	}
	rec, ok := m.users[username]
	if !ok {
		m.mu.Unlock()
		return UserRecord{}, ErrStoreUserNotFound
	}
	snapshot := *rec
	m.mu.Unlock()
	if m.afterLookup != nil {
		m.afterLookup()
	}
	return snapshot, nil
}

func (m *mockStore) RecordFailure(_ context.Context, username string, now time.Time, threshold int, lockFor time.Duration) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecord != nil {
		return UserRecord{}, m.failRecord
	}
	rec, ok := m.users[username]
	if !ok {
		return UserRecord{}, ErrStoreUserNotFound
	}
	if !rec.LockedUntil.IsZero() && !rec.LockedUntil.After(now) {
		rec.LockedUntil = time.Time{}
		rec.FailedAttempts = 0
	}
	rec.FailedAttempts++
	if threshold > 0 && rec.FailedAttempts >= threshold {
		rec.LockedUntil = now.Add(lockFor)
	}
	return *rec, nil
}

func (m *mockStore) ClearFailures(_ context.Context, username string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClear != nil {
		return UserRecord{}, m.failClear
	}
	rec, ok := m.users[username]
	if !ok {
		return UserRecord{}, ErrStoreUserNotFound
	}
	rec.FailedAttempts = 0
	rec.LockedUntil = time.Time{}
	return *rec, nil
}

func (m *mockStore) SetLockout(_ context.Context, username string, until time.Time) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[username]
	if !ok {
		return UserRecord{}, ErrStoreUserNotFound
	}
	rec.LockedUntil = until
	return *rec, nil
}

func (m *mockStore) UpdateSecretHash(_ context.Context, username, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	rec, ok := m.users[username]
	if !ok {
		return ErrStoreUserNotFound
	}
	rec.SecretHash = newHash
	return nil
}

func (m *mockStore) record(t *testing.T, username string) UserRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[username]
	if !ok {
		t.Fatalf("record for %q not found", username)
	}
	return *rec
}

// testConfig returns DefaultConfig tuned for test speed: minimal Argon2
// parameters and throttles off.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Secret.Memory = 8192
	cfg.Secret.Time = 1
	cfg.Secret.Parallelism = 1
	cfg.Secret.MinLength = 8
	cfg.Throttle.EnableUsernameThrottle = false
	cfg.Throttle.EnableIPThrottle = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, store UserStore) *Engine {
	t.Helper()
	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestEngineWithClock(t *testing.T, cfg Config, store UserStore, clock func() time.Time) *Engine {
	t.Helper()
	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithMetricsEnabled(true).
		WithClock(clock).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// newTestEngineWithRedis wires a miniredis-backed throttle. Returns the
// miniredis handle so tests can FastForward windows.
func newTestEngineWithRedis(t *testing.T, cfg Config, store UserStore) (*Engine, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed to start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithRedis(rdb).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mr
}

// seedUser creates a user through the engine so the stored hash matches the
// engine's hasher configuration.
func seedUser(t *testing.T, engine *Engine, username, secret string) string {
	t.Helper()
	result, err := engine.CreateUser(context.Background(), CreateUserRequest{
		Username: username,
		Secret:   secret,
	})
	if err != nil {
		t.Fatalf("seed CreateUser(%q) failed: %v", username, err)
	}
	return result.UserID
}
