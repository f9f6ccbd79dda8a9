package credcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/credcore/credcore/password"
)

func TestVerifyCredential_Success(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	userID := seedUser(t, engine, "alice", "correct-horse-battery")

	result, err := engine.VerifyCredentialWithResult(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("VerifyCredentialWithResult failed: %v", err)
	}
	if result.UserID != userID {
		t.Errorf("UserID = %q, want %q", result.UserID, userID)
	}
	if got := engine.MetricsSnapshot().Counters[MetricVerifySuccess]; got != 1 {
		t.Errorf("MetricVerifySuccess = %d, want 1", got)
	}
}

func TestVerifyCredential_WrongSecret(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")

	err := engine.VerifyCredential(ctx, "alice", "wrong-secret-value")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := store.record(t, "alice").FailedAttempts; got != 1 {
		t.Errorf("FailedAttempts = %d, want 1", got)
	}
}

func TestVerifyCredential_EmptySecretCountsAsFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Lockout.Threshold = 3
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")

	// An empty secret is a mismatch like any other: each attempt advances
	// the failure counter and the lockout threshold still applies.
	for i := 1; i < cfg.Lockout.Threshold; i++ {
		err := engine.VerifyCredential(ctx, "alice", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
		count, err := engine.FailureCount(ctx, "alice")
		if err != nil {
			t.Fatalf("FailureCount failed: %v", err)
		}
		if count != i {
			t.Fatalf("FailureCount after attempt %d = %d, want %d", i, count, i)
		}
	}

	err := engine.VerifyCredential(ctx, "alice", "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked at threshold, got %v", err)
	}
}

func TestVerifyCredential_SuccessClearsConcurrentFailure(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")

	// A wrong-secret attempt lands between the lookup snapshot and the
	// successful compare; the success must still wipe the counter.
	armed := true
	store.afterLookup = func() {
		if !armed {
			return
		}
		armed = false
		if _, err := store.RecordFailure(ctx, "alice", time.Now(), 0, 0); err != nil {
			t.Errorf("RecordFailure failed: %v", err)
		}
	}

	if err := engine.VerifyCredential(ctx, "alice", "correct-horse-battery"); err != nil {
		t.Fatalf("VerifyCredential failed: %v", err)
	}
	if got := store.record(t, "alice").FailedAttempts; got != 0 {
		t.Errorf("FailedAttempts after success = %d, want 0", got)
	}
}

func TestVerifyCredential_UnknownUserSuppressed(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)

	err := engine.VerifyCredential(context.Background(), "ghost", "whatever-secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials with suppression on, got %v", err)
	}
	if errors.Is(err, ErrUnknownUser) {
		t.Fatal("unknown user must not be distinguishable when suppression is on")
	}
	if got := engine.MetricsSnapshot().Counters[MetricVerifyUnknownUser]; got != 1 {
		t.Errorf("MetricVerifyUnknownUser = %d, want 1", got)
	}
}

func TestVerifyCredential_UnknownUserDistinct(t *testing.T) {
	cfg := testConfig()
	cfg.Security.SuppressUnknownUser = false
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)

	err := engine.VerifyCredential(context.Background(), "ghost", "whatever-secret")
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser with suppression off, got %v", err)
	}
}

func TestVerifyCredential_SuccessResetsCounter(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")

	for i := 0; i < 3; i++ {
		_ = engine.VerifyCredential(ctx, "alice", "wrong-secret-value")
	}
	if got := store.record(t, "alice").FailedAttempts; got != 3 {
		t.Fatalf("FailedAttempts = %d, want 3 before success", got)
	}

	if err := engine.VerifyCredential(ctx, "alice", "correct-horse-battery"); err != nil {
		t.Fatalf("verify after failures failed: %v", err)
	}
	if got := store.record(t, "alice").FailedAttempts; got != 0 {
		t.Errorf("FailedAttempts = %d, want 0 after success", got)
	}
}

func TestVerifyCredential_StoreUnavailable(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)

	seedUser(t, engine, "alice", "correct-horse-battery")
	store.failLookup = errors.New("connection refused")

	err := engine.VerifyCredential(context.Background(), "alice", "correct-horse-battery")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failure must not be reported as invalid credentials")
	}
}

func TestVerifyCredential_MalformedStoredHash(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	if _, err := store.Create(ctx, CreateUserInput{
		Username:   "alice",
		SecretHash: "not-a-phc-string",
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	err := engine.VerifyCredential(ctx, "alice", "correct-horse-battery")
	if !errors.Is(err, ErrHashFailure) {
		t.Fatalf("expected ErrHashFailure, got %v", err)
	}
}

func TestVerifyCredential_HashUpgradeOnVerify(t *testing.T) {
	weak, err := password.New(password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("weak hasher init failed: %v", err)
	}
	weakHash, err := weak.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("weak hash failed: %v", err)
	}

	cfg := testConfig()
	cfg.Secret.Memory = 16384
	cfg.Secret.KeyLength = 32
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)
	ctx := context.Background()

	if _, err := store.Create(ctx, CreateUserInput{Username: "alice", SecretHash: weakHash}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := engine.VerifyCredentialWithResult(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.HashUpgraded {
		t.Fatal("expected HashUpgraded with weaker stored parameters")
	}
	if got := store.record(t, "alice").SecretHash; got == weakHash {
		t.Error("stored hash was not rewritten")
	}

	// The upgraded hash must still verify, without another upgrade.
	result, err = engine.VerifyCredentialWithResult(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("verify after upgrade failed: %v", err)
	}
	if result.HashUpgraded {
		t.Error("unexpected second upgrade")
	}
}

func TestVerifyCredential_HashUpgradeDisabled(t *testing.T) {
	weak, err := password.New(password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("weak hasher init failed: %v", err)
	}
	weakHash, err := weak.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("weak hash failed: %v", err)
	}

	cfg := testConfig()
	cfg.Secret.Memory = 16384
	cfg.Secret.UpgradeOnVerify = false
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)
	ctx := context.Background()

	if _, err := store.Create(ctx, CreateUserInput{Username: "alice", SecretHash: weakHash}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := engine.VerifyCredentialWithResult(ctx, "alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.HashUpgraded {
		t.Error("upgrade ran with UpgradeOnVerify disabled")
	}
	if got := store.record(t, "alice").SecretHash; got != weakHash {
		t.Error("stored hash changed with UpgradeOnVerify disabled")
	}
}

func TestVerifyCredential_LatencyHistogram(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")
	if err := engine.VerifyCredential(ctx, "alice", "correct-horse-battery"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	buckets := engine.MetricsSnapshot().Histograms[MetricVerifyLatency]
	var total uint64
	for _, b := range buckets {
		total += b
	}
	if total != 1 {
		t.Errorf("latency histogram total = %d, want 1", total)
	}
}

func TestVerifyCredential_NotReady(t *testing.T) {
	var engine *Engine
	if err := engine.VerifyCredential(context.Background(), "alice", "x"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady on nil engine, got %v", err)
	}
}

func TestVerifyCredential_RecordDeletedMidFlight(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, testConfig(), store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")
	store.failRecord = ErrStoreUserNotFound

	err := engine.VerifyCredential(ctx, "alice", "wrong-secret-value")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials when record vanished, got %v", err)
	}
}

func TestVerifyCredential_ConcurrentFailuresNoOvershoot(t *testing.T) {
	cfg := testConfig()
	cfg.Lockout.Threshold = 5
	store := newMockStore()
	engine := newTestEngine(t, cfg, store)
	ctx := context.Background()

	seedUser(t, engine, "alice", "correct-horse-battery")

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = engine.VerifyCredential(ctx, "alice", "wrong-secret-value")
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	rec := store.record(t, "alice")
	if rec.LockedUntil.IsZero() {
		t.Fatal("expected account locked after concurrent failures past threshold")
	}
	if rec.FailedAttempts < cfg.Lockout.Threshold {
		t.Errorf("FailedAttempts = %d, want >= %d", rec.FailedAttempts, cfg.Lockout.Threshold)
	}
}
