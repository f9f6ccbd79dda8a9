package credcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/credcore/credcore/internal/rate"
)

// CreateUser registers a new principal. The secret is hashed with Argon2id
// under a fresh random salt before anything reaches the store; the record
// starts with a zero failure counter and no lockout.
//
// Returns ErrDuplicateUser when the username exists (the original record is
// untouched), ErrInvalidUsername / ErrInvalidSecret on policy violations,
// and ErrCreateRateLimited when the creation throttle rejects the request.
func (e *Engine) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResult, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.validateUsername(req.Username); err != nil {
		e.metricInc(MetricCreateInvalid)
		e.emitAudit(ctx, auditEventUserCreateFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "username_policy",
			}
		})
		return nil, err
	}
	if len(req.Secret) == 0 || len(req.Secret) < e.config.Secret.MinLength {
		e.metricInc(MetricCreateInvalid)
		e.emitAudit(ctx, auditEventUserCreateFailure, false, "", ErrInvalidSecret, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "secret_policy",
			}
		})
		return nil, ErrInvalidSecret
	}

	if e.limiter != nil {
		if err := e.limiter.EnforceCreate(ctx, req.Username, clientIPFromContext(ctx)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricCreateRateLimited)
				e.emitAudit(ctx, auditEventCreateRateLimited, false, "", ErrCreateRateLimited, func() map[string]string {
					return map[string]string{
						"username": req.Username,
					}
				})
				e.emitRateLimit(ctx, "user_create", func() map[string]string {
					return map[string]string{
						"username": req.Username,
					}
				})
				return nil, ErrCreateRateLimited
			}
			return nil, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
		}
	}

	secretHash, err := e.hasher.Hash(req.Secret)
	if err != nil {
		e.emitAudit(ctx, auditEventUserCreateFailure, false, "", ErrHashFailure, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "hash_failure",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}

	created, err := e.store.Create(ctx, CreateUserInput{
		Username:   req.Username,
		SecretHash: secretHash,
		CreatedAt:  e.now(),
	})
	if err != nil {
		if errors.Is(err, ErrStoreDuplicateUser) {
			e.metricInc(MetricCreateDuplicate)
			e.emitAudit(ctx, auditEventUserCreateDupe, false, "", ErrDuplicateUser, func() map[string]string {
				return map[string]string{
					"username": req.Username,
				}
			})
			return nil, ErrDuplicateUser
		}
		e.emitAudit(ctx, auditEventUserCreateFailure, false, "", ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"username": req.Username,
				"reason":   "store_create_failed",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	req.Secret = ""
	e.metricInc(MetricCreateSuccess)
	e.emitAudit(ctx, auditEventUserCreated, true, created.UserID, nil, func() map[string]string {
		return map[string]string{
			"username": req.Username,
		}
	})

	return &CreateUserResult{
		UserID:    created.UserID,
		CreatedAt: created.CreatedAt,
	}, nil
}

func (e *Engine) validateUsername(username string) error {
	if len(username) < e.config.Username.MinLength || len(username) > e.config.Username.MaxLength {
		return ErrInvalidUsername
	}
	if e.usernameRE != nil && !e.usernameRE.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
