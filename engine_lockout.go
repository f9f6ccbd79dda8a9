package credcore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UnlockAccount clears an account's failure counter and any active lockout.
// Meant for operator tooling and support flows; the normal path is the
// lockout expiring on its own.
func (e *Engine) UnlockAccount(ctx context.Context, username string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	rec, err := e.store.ClearFailures(ctx, username)
	if err != nil {
		if errors.Is(err, ErrStoreUserNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricLockoutCleared)
	e.emitAudit(ctx, auditEventAccountUnlocked, true, rec.UserID, nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})
	return nil
}

// LockAccount locks an account until the given deadline regardless of its
// failure counter. A deadline in the past is rejected.
func (e *Engine) LockAccount(ctx context.Context, username string, until time.Time) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if !until.After(e.now()) {
		return errors.New("lock deadline must be in the future")
	}
	rec, err := e.store.SetLockout(ctx, username, until)
	if err != nil {
		if errors.Is(err, ErrStoreUserNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricLockoutTriggered)
	e.emitAudit(ctx, auditEventAccountLocked, true, rec.UserID, nil, func() map[string]string {
		return map[string]string{
			"username":     username,
			"locked_until": until.UTC().Format(time.RFC3339),
			"reason":       "manual_lock",
		}
	})
	return nil
}

// FailureCount reports the account's current consecutive failure counter.
func (e *Engine) FailureCount(ctx context.Context, username string) (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}
	rec, err := e.store.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, ErrStoreUserNotFound) {
			return 0, ErrUnknownUser
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return rec.FailedAttempts, nil
}

// LockoutDeadline reports when the account's lockout ends. The zero time
// means the account is not locked; an expired deadline is reported as zero.
func (e *Engine) LockoutDeadline(ctx context.Context, username string) (time.Time, error) {
	if e == nil || e.store == nil {
		return time.Time{}, ErrEngineNotReady
	}
	rec, err := e.store.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, ErrStoreUserNotFound) {
			return time.Time{}, ErrUnknownUser
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !e.lockoutActive(rec, e.now()) {
		return time.Time{}, nil
	}
	return rec.LockedUntil, nil
}
