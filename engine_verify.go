package credcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/credcore/credcore/internal/rate"
)

// VerifyCredential checks a presented secret against the stored record.
// A nil error means the principal authenticated; callers invoke their token
// issuer only after that.
func (e *Engine) VerifyCredential(ctx context.Context, username, secret string) error {
	_, err := e.VerifyCredentialWithResult(ctx, username, secret)
	return err
}

// VerifyCredentialWithResult behaves like [Engine.VerifyCredential] and
// additionally reports the matched user ID and whether the stored hash was
// transparently upgraded.
//
// Outcomes: ErrInvalidCredentials on mismatch (also on unknown usernames
// when SuppressUnknownUser is set, otherwise ErrUnknownUser),
// ErrAccountLocked while the lockout deadline is in the future (without
// recomputing the hash or touching the counter, though the attempt still
// charges the throttle windows), and ErrVerifyRateLimited when the
// pre-core throttle rejects the attempt.
func (e *Engine) VerifyCredentialWithResult(ctx context.Context, username, secret string) (*VerifyResult, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckVerify(ctx, username, ip); err != nil {
			return nil, e.verifyThrottled(ctx, username, err)
		}
	}

	rec, err := e.store.Lookup(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrStoreUserNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if terr := e.recordThrottleFailure(ctx, username, ip); terr != nil {
			return nil, terr
		}
		e.metricInc(MetricVerifyUnknownUser)
		e.metricInc(MetricVerifyFailure)
		outcome := ErrUnknownUser
		if e.config.Security.SuppressUnknownUser {
			outcome = ErrInvalidCredentials
		}
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", outcome, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "unknown_user",
			}
		})
		return nil, outcome
	}

	now := e.now()
	if e.lockoutActive(rec, now) {
		// Locked accounts skip the hash work and the counter, but the
		// attempt still charges the throttle windows.
		if terr := e.recordThrottleFailure(ctx, username, ip); terr != nil {
			return nil, terr
		}
		e.metricInc(MetricVerifyLocked)
		e.emitAudit(ctx, auditEventVerifyFailure, false, rec.UserID, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "account_locked",
			}
		})
		return nil, ErrAccountLocked
	}

	ok, err := e.hasher.Verify(secret, rec.SecretHash)
	if err != nil {
		e.emitAudit(ctx, auditEventVerifyFailure, false, rec.UserID, ErrHashFailure, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "hash_failure",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}

	if !ok {
		return nil, e.verifyMismatch(ctx, username, ip, rec, now)
	}

	// Unconditional so a failure recorded between the lookup snapshot and
	// the successful compare still gets wiped.
	if _, err := e.store.ClearFailures(ctx, username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if e.limiter != nil {
		// Best-effort: a throttle reset failure must not fail the login.
		_ = e.limiter.ResetVerify(ctx, username, ip)
	}

	result := &VerifyResult{UserID: rec.UserID}
	if e.config.Secret.UpgradeOnVerify {
		result.HashUpgraded = e.maybeUpgradeHash(ctx, username, secret, rec)
	}

	e.metricInc(MetricVerifySuccess)
	e.metricObserve(MetricVerifyLatency, time.Since(start))
	e.emitAudit(ctx, auditEventVerifySuccess, true, rec.UserID, nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})

	return result, nil
}

// verifyThrottled maps a pre-core throttle rejection into the public error
// surface and records the hit.
func (e *Engine) verifyThrottled(ctx context.Context, username string, err error) error {
	if !errors.Is(err, rate.ErrRateLimited) {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	e.metricInc(MetricVerifyRateLimited)
	e.emitAudit(ctx, auditEventVerifyRateLimited, false, "", ErrVerifyRateLimited, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})
	e.emitRateLimit(ctx, "verify", func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})
	return ErrVerifyRateLimited
}

// recordThrottleFailure charges one failed attempt against the verification
// windows. If the increment itself crosses the budget the attempt is reported
// as rate limited rather than as bad credentials.
func (e *Engine) recordThrottleFailure(ctx context.Context, username, ip string) error {
	if e.limiter == nil {
		return nil
	}
	err := e.limiter.RecordVerifyFailure(ctx, username, ip)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		return e.verifyThrottled(ctx, username, err)
	}
	return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
}

// verifyMismatch handles a wrong secret for a known, unlocked account. The
// counter increment and the lockout decision happen inside the store's
// critical section so concurrent failures cannot race past the threshold.
func (e *Engine) verifyMismatch(ctx context.Context, username, ip string, rec UserRecord, now time.Time) error {
	threshold := 0
	var lockFor time.Duration
	if e.config.Lockout.Enabled {
		threshold = e.config.Lockout.Threshold
		lockFor = e.config.Lockout.Duration
	}

	updated, err := e.store.RecordFailure(ctx, username, now, threshold, lockFor)
	if err != nil {
		if errors.Is(err, ErrStoreUserNotFound) {
			// Deleted between lookup and update; report as a plain mismatch.
			updated = rec
		} else {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if terr := e.recordThrottleFailure(ctx, username, ip); terr != nil {
		return terr
	}

	if threshold > 0 && !updated.LockedUntil.IsZero() && updated.LockedUntil.After(now) {
		e.metricInc(MetricLockoutTriggered)
		e.emitAudit(ctx, auditEventAccountLocked, false, updated.UserID, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"username":        username,
				"failed_attempts": fmt.Sprintf("%d", updated.FailedAttempts),
				"locked_until":    updated.LockedUntil.UTC().Format(time.RFC3339),
			}
		})
		return ErrAccountLocked
	}

	e.metricInc(MetricVerifyFailure)
	e.emitAudit(ctx, auditEventVerifyFailure, false, updated.UserID, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"username":        username,
			"reason":          "secret_mismatch",
			"failed_attempts": fmt.Sprintf("%d", updated.FailedAttempts),
		}
	})
	return ErrInvalidCredentials
}

// maybeUpgradeHash rehashes the secret when the stored parameters lag the
// configured ones. Failures are swallowed: the login already succeeded and
// the old hash keeps working.
func (e *Engine) maybeUpgradeHash(ctx context.Context, username, secret string, rec UserRecord) bool {
	needs, err := e.hasher.NeedsRehash(rec.SecretHash)
	if err != nil || !needs {
		return false
	}
	newHash, err := e.hasher.Hash(secret)
	if err != nil {
		return false
	}
	if err := e.store.UpdateSecretHash(ctx, username, newHash); err != nil {
		return false
	}
	e.metricInc(MetricHashUpgraded)
	e.emitAudit(ctx, auditEventSecretHashUpgraded, true, rec.UserID, nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})
	return true
}
