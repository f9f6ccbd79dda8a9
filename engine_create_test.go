package credcore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateUser_Success(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	result, err := engine.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Secret:   "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if result.UserID == "" {
		t.Error("expected a user ID")
	}
	if result.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	rec := store.record(t, "alice")
	if rec.FailedAttempts != 0 {
		t.Errorf("new record FailedAttempts = %d, want 0", rec.FailedAttempts)
	}
	if !rec.LockedUntil.IsZero() {
		t.Errorf("new record LockedUntil = %v, want zero", rec.LockedUntil)
	}
	if rec.SecretHash == "correct-horse-battery" || rec.SecretHash == "" {
		t.Error("secret must be stored as a hash, never as plaintext")
	}
	if !strings.HasPrefix(rec.SecretHash, "$argon2id$") {
		t.Errorf("stored hash %q is not in PHC argon2id format", rec.SecretHash)
	}
}

func TestCreateUser_DuplicateRejected(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")
	originalHash := store.record(t, "alice").SecretHash

	_, err := engine.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Secret:   "another-secret-entirely",
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	// The original record must be untouched.
	if got := store.record(t, "alice").SecretHash; got != originalHash {
		t.Error("duplicate creation attempt modified the existing record")
	}
	if got := engine.MetricsSnapshot().Counters[MetricCreateDuplicate]; got != 1 {
		t.Errorf("MetricCreateDuplicate = %d, want 1", got)
	}
}

func TestCreateUser_UsernamePolicy(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"too_short", "ab"},
		{"too_long", strings.Repeat("a", 65)},
		{"leading_dot", ".alice"},
		{"whitespace", "ali ce"},
		{"control_chars", "alice\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CreateUser(ctx, CreateUserRequest{
				Username: tc.username,
				Secret:   "correct-horse-battery",
			})
			if !errors.Is(err, ErrInvalidUsername) {
				t.Errorf("username %q: expected ErrInvalidUsername, got %v", tc.username, err)
			}
		})
	}
}

func TestCreateUser_SecretPolicy(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	for _, secret := range []string{"", "short"} {
		_, err := engine.CreateUser(ctx, CreateUserRequest{Username: "alice", Secret: secret})
		if !errors.Is(err, ErrInvalidSecret) {
			t.Errorf("secret %q: expected ErrInvalidSecret, got %v", secret, err)
		}
	}
}

func TestCreateUser_UniqueSaltsPerUser(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)

	seedUser(t, engine, "alice", "shared-secret-value")
	seedUser(t, engine, "bob", "shared-secret-value")

	if store.record(t, "alice").SecretHash == store.record(t, "bob").SecretHash {
		t.Error("identical secrets must not produce identical hashes")
	}
}

func TestCreateUser_StoreUnavailable(t *testing.T) {
	store := newMockStore()
	store.failCreate = errors.New("connection refused")
	engine := newTestEngine(t, testConfig(), store)

	_, err := engine.CreateUser(context.Background(), CreateUserRequest{
		Username: "alice",
		Secret:   "correct-horse-battery",
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCreateUser_NotReady(t *testing.T) {
	var engine *Engine
	if _, err := engine.CreateUser(context.Background(), CreateUserRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady on nil engine, got %v", err)
	}
}
