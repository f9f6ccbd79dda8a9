package credcore

import "errors"

var (
	// ErrEngineNotReady indicates the Engine was used before Build wired its
	// dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidCredentials is the uniform verification failure. With
	// Security.SuppressUnknownUser enabled it also covers unknown usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownUser reports a verification attempt against a username that
	// does not exist. Only returned when SuppressUnknownUser is disabled.
	ErrUnknownUser = errors.New("unknown user")
	// ErrDuplicateUser rejects creation of a username that already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidUsername rejects usernames outside the configured format.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidSecret rejects empty or too-short secrets at creation.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrAccountLocked indicates the account's lockout deadline is in the
	// future. The hash is not recomputed for locked accounts.
	ErrAccountLocked = errors.New("account locked")
	// ErrVerifyRateLimited indicates the pre-core throttle rejected the
	// verification attempt before it reached the store.
	ErrVerifyRateLimited = errors.New("verification rate limited")
	// ErrCreateRateLimited indicates the creation throttle rejected the
	// request.
	ErrCreateRateLimited = errors.New("user creation rate limited")
	// ErrHashFailure indicates the hashing primitive is misconfigured or a
	// stored hash is corrupt. Fatal for the request, the store is untouched.
	ErrHashFailure = errors.New("secret hash failure")
	// ErrThrottleUnavailable indicates the throttle backend is unreachable.
	ErrThrottleUnavailable = errors.New("throttle backend unavailable")
	// ErrStoreUnavailable wraps backend failures reported by a UserStore.
	ErrStoreUnavailable = errors.New("user store unavailable")

	// ErrStoreDuplicateUser is returned by UserStore implementations when
	// Create hits an existing username. The Engine maps it to
	// ErrDuplicateUser.
	ErrStoreDuplicateUser = errors.New("store: duplicate username")
	// ErrStoreUserNotFound is returned by UserStore implementations when a
	// username is absent. The Engine maps it according to the enumeration
	// policy.
	ErrStoreUserNotFound = errors.New("store: user not found")
)
