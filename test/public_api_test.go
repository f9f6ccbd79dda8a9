package test

import (
	"context"
	"testing"
	"time"

	"github.com/credcore/credcore"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = credcore.New

	var _ *credcore.Engine
	var _ credcore.Config
	var _ credcore.CreateUserRequest
	var _ credcore.CreateUserResult
	var _ credcore.VerifyResult
	var _ credcore.UserRecord
	var _ credcore.UserStore
	var _ credcore.AuditSink
	var _ credcore.SecurityReport
	var _ credcore.MetricsSnapshot

	var _ error = credcore.ErrInvalidCredentials
	var _ error = credcore.ErrUnknownUser
	var _ error = credcore.ErrDuplicateUser
	var _ error = credcore.ErrAccountLocked
	var _ error = credcore.ErrVerifyRateLimited
	var _ error = credcore.ErrCreateRateLimited
	var _ error = credcore.ErrStoreUnavailable

	var _ func(*credcore.Engine, context.Context, credcore.CreateUserRequest) (*credcore.CreateUserResult, error) = (*credcore.Engine).CreateUser
	var _ func(*credcore.Engine, context.Context, string, string) error = (*credcore.Engine).VerifyCredential
	var _ func(*credcore.Engine, context.Context, string, string) (*credcore.VerifyResult, error) = (*credcore.Engine).VerifyCredentialWithResult
	var _ func(*credcore.Engine, context.Context, string) error = (*credcore.Engine).UnlockAccount
	var _ func(*credcore.Engine, context.Context, string, time.Time) error = (*credcore.Engine).LockAccount
	var _ func(*credcore.Engine) credcore.SecurityReport = (*credcore.Engine).SecurityReport
}
