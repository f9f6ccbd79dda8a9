package credcore

import (
	"context"
	"errors"
)

const (
	auditEventUserCreated        = "user_created"
	auditEventUserCreateFailure  = "user_create_failure"
	auditEventUserCreateDupe     = "user_create_duplicate"
	auditEventCreateRateLimited  = "user_create_rate_limited"
	auditEventVerifySuccess      = "verify_success"
	auditEventVerifyFailure      = "verify_failure"
	auditEventVerifyRateLimited  = "verify_rate_limited"
	auditEventAccountLocked      = "account_locked"
	auditEventAccountUnlocked    = "account_unlocked"
	auditEventSecretHashUpgraded = "secret_hash_upgraded"
	auditEventRateLimitTriggered = "rate_limit_triggered"
)

type auditErrorCode string

const (
	auditErrInvalidCredentials auditErrorCode = "invalid_credentials"
	auditErrUnknownUser        auditErrorCode = "unknown_user"
	auditErrDuplicateUser      auditErrorCode = "duplicate_user"
	auditErrInvalidUsername    auditErrorCode = "invalid_username"
	auditErrInvalidSecret      auditErrorCode = "invalid_secret"
	auditErrAccountLocked      auditErrorCode = "account_locked"
	auditErrRateLimited        auditErrorCode = "rate_limited"
	auditErrHashFailure        auditErrorCode = "hash_failure"
	auditErrUnavailable        auditErrorCode = "backend_unavailable"
	auditErrInternal           auditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditCodeFor(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(ctx context.Context, scope string, metadataBuilder func() map[string]string) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditCodeFor(err error) auditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrUnknownUser):
		return auditErrUnknownUser
	case errors.Is(err, ErrDuplicateUser):
		return auditErrDuplicateUser
	case errors.Is(err, ErrInvalidUsername):
		return auditErrInvalidUsername
	case errors.Is(err, ErrInvalidSecret):
		return auditErrInvalidSecret
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrVerifyRateLimited), errors.Is(err, ErrCreateRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrHashFailure):
		return auditErrHashFailure
	case errors.Is(err, ErrThrottleUnavailable), errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
