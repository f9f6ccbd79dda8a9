package credcore

import (
	"context"
	"time"
)

// UserRecord is the full account record owned by a [UserStore]. The secret
// hash is a PHC-formatted Argon2id string with the per-record salt embedded;
// no plaintext or reusable salt ever leaves the password package.
type UserRecord struct {
	UserID         string
	Username       string
	SecretHash     string
	CreatedAt      time.Time
	FailedAttempts int
	// LockedUntil is the lockout deadline. The zero time means not locked.
	LockedUntil time.Time
}

// CreateUserInput is the input for [UserStore.Create]. The Engine fills it
// with an already-hashed secret.
type CreateUserInput struct {
	Username   string
	SecretHash string
	CreatedAt  time.Time
}

// UserStore is the persistence seam of the core. The in-memory reference
// implementation lives in the memstore package; durable backends implement
// the same contract.
//
// Mutation methods must be atomic per username: the failure counter and
// lockout deadline are read and written inside one critical section, and
// implementations must keep lock hold times short (no blocking I/O while a
// record lock is held beyond the backend's own write).
type UserStore interface {
	// Create inserts a new record. Returns ErrStoreDuplicateUser when the
	// username exists; the existing record must not be mutated.
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)

	// Lookup returns the record for a username, or ErrStoreUserNotFound.
	// Usernames compare case-sensitively.
	Lookup(ctx context.Context, username string) (UserRecord, error)

	// RecordFailure atomically increments the failed-attempt counter by one
	// and returns the updated record. A lockout deadline that has already
	// passed resets the counter to zero before the increment. When
	// threshold > 0 and the new count reaches it, the store sets
	// LockedUntil to now.Add(lockFor) in the same critical section.
	RecordFailure(ctx context.Context, username string, now time.Time, threshold int, lockFor time.Duration) (UserRecord, error)

	// ClearFailures resets the failed-attempt counter to zero and clears
	// any lockout deadline.
	ClearFailures(ctx context.Context, username string) (UserRecord, error)

	// SetLockout sets the lockout deadline unconditionally (manual lock).
	SetLockout(ctx context.Context, username string, until time.Time) (UserRecord, error)

	// UpdateSecretHash replaces the stored hash. Used for transparent
	// parameter upgrades after a successful verification.
	UpdateSecretHash(ctx context.Context, username string, newHash string) error
}

// CreateUserRequest is the input for [Engine.CreateUser].
type CreateUserRequest struct {
	Username string
	Secret   string
}

// CreateUserResult is returned by [Engine.CreateUser].
type CreateUserResult struct {
	UserID    string
	CreatedAt time.Time
}

// VerifyResult is returned by [Engine.VerifyCredentialWithResult] on
// success.
type VerifyResult struct {
	UserID string
	// HashUpgraded reports whether the stored hash was transparently
	// re-hashed with current parameters during this verification.
	HashUpgraded bool
}

// SecurityReport is a read-only snapshot of the engine's active policy,
// returned by [Engine.SecurityReport].
type SecurityReport struct {
	LockoutEnabled      bool
	LockoutThreshold    int
	LockoutDuration     time.Duration
	ThrottleActive      bool
	SuppressUnknownUser bool
	SecretMinLength     int
	UpgradeOnVerify     bool
	Argon2              SecretConfigReport
	AuditEnabled        bool
	MetricsEnabled      bool
}

// SecretConfigReport contains the Argon2id parameters active in the engine.
type SecretConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}
