package rate

import "errors"

var (
	// ErrRateLimited indicates the fixed-window budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable indicates the throttle backend is unreachable.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
