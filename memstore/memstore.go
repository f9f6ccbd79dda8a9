package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/credcore/credcore"
)

type entry struct {
	mu  sync.Mutex
	rec credcore.UserRecord
}

// Store is an in-memory [credcore.UserStore]. Safe for concurrent use. The
// zero value is not usable; call [New].
type Store struct {
	mu    sync.RWMutex
	users map[string]*entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{users: make(map[string]*entry)}
}

// Create inserts a new record. The username must not already exist.
func (s *Store) Create(ctx context.Context, input credcore.CreateUserInput) (credcore.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return credcore.UserRecord{}, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	rec := credcore.UserRecord{
		UserID:     uuid.NewString(),
		Username:   input.Username,
		SecretHash: input.SecretHash,
		CreatedAt:  createdAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[input.Username]; exists {
		return credcore.UserRecord{}, credcore.ErrStoreDuplicateUser
	}
	s.users[input.Username] = &entry{rec: rec}
	return rec, nil
}

// Lookup returns a copy of the record for username.
func (s *Store) Lookup(ctx context.Context, username string) (credcore.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return credcore.UserRecord{}, err
	}

	e, err := s.get(username)
	if err != nil {
		return credcore.UserRecord{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, nil
}

// RecordFailure increments the failure counter inside the record's critical
// section. An expired lockout deadline resets the counter first, so a stale
// lock never feeds into a fresh failure streak. When threshold is positive
// and the new count reaches it, the record is locked until now+lockFor.
func (s *Store) RecordFailure(ctx context.Context, username string, now time.Time, threshold int, lockFor time.Duration) (credcore.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return credcore.UserRecord{}, err
	}

	e, err := s.get(username)
	if err != nil {
		return credcore.UserRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rec.LockedUntil.IsZero() && !e.rec.LockedUntil.After(now) {
		e.rec.LockedUntil = time.Time{}
		e.rec.FailedAttempts = 0
	}

	e.rec.FailedAttempts++
	if threshold > 0 && e.rec.FailedAttempts >= threshold {
		e.rec.LockedUntil = now.Add(lockFor)
	}
	return e.rec, nil
}

// ClearFailures resets the failure counter and removes any lockout.
func (s *Store) ClearFailures(ctx context.Context, username string) (credcore.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return credcore.UserRecord{}, err
	}

	e, err := s.get(username)
	if err != nil {
		return credcore.UserRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.FailedAttempts = 0
	e.rec.LockedUntil = time.Time{}
	return e.rec, nil
}

// SetLockout locks the record until the given deadline without touching the
// failure counter.
func (s *Store) SetLockout(ctx context.Context, username string, until time.Time) (credcore.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return credcore.UserRecord{}, err
	}

	e, err := s.get(username)
	if err != nil {
		return credcore.UserRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.LockedUntil = until
	return e.rec, nil
}

// UpdateSecretHash replaces the stored hash.
func (s *Store) UpdateSecretHash(ctx context.Context, username, newHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := s.get(username)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.SecretHash = newHash
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) get(username string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.users[username]
	if !ok {
		return nil, credcore.ErrStoreUserNotFound
	}
	return e, nil
}
