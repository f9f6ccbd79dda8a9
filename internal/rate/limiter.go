package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds throttle tuning parameters.
type Config struct {
	EnableUsernameThrottle bool
	EnableIPThrottle       bool
	MaxVerifyAttempts      int
	VerifyCooldown         time.Duration
	MaxCreateAttempts      int
	CreateCooldown         time.Duration
}

// Limiter enforces per-username and per-IP budgets for verification and
// creation attempts using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckVerify checks whether the username+IP pair is within the
// verification attempt budget without consuming from it.
func (l *Limiter) CheckVerify(ctx context.Context, username, ip string) error {
	if l.config.EnableUsernameThrottle {
		if err := l.checkCounter(ctx, verifyUserKey(username), l.config.MaxVerifyAttempts); err != nil {
			return err
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, verifyIPKey(ip), l.config.MaxVerifyAttempts); err != nil {
			return err
		}
	}

	return nil
}

// RecordVerifyFailure consumes one verification attempt for the username+IP
// pair. Returns ErrRateLimited when the budget is now exceeded.
func (l *Limiter) RecordVerifyFailure(ctx context.Context, username, ip string) error {
	if l.config.EnableUsernameThrottle {
		count, err := l.incrementWithTTL(ctx, verifyUserKey(username), l.config.VerifyCooldown)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxVerifyAttempts) {
			return ErrRateLimited
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err := l.incrementWithTTL(ctx, verifyIPKey(ip), l.config.VerifyCooldown)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxVerifyAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// ResetVerify clears the verification counters for the username+IP pair.
// Called after a successful verification.
func (l *Limiter) ResetVerify(ctx context.Context, username, ip string) error {
	keys := make([]string, 0, 2)
	if l.config.EnableUsernameThrottle {
		keys = append(keys, verifyUserKey(username))
	}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, verifyIPKey(ip))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// EnforceCreate consumes one creation attempt for the username+IP pair and
// rejects the request once the budget is exceeded.
func (l *Limiter) EnforceCreate(ctx context.Context, username, ip string) error {
	if l.config.EnableUsernameThrottle {
		if err := l.enforceKey(ctx, createUserKey(username)); err != nil {
			return err
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceKey(ctx, createIPKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

// VerifyAttempts returns the current verification counter for a username.
// Missing keys return zero and do not reveal account existence.
func (l *Limiter) VerifyAttempts(ctx context.Context, username string) (int, error) {
	count, err := l.redis.Get(ctx, verifyUserKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.incrementWithTTL(ctx, key, l.config.CreateCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxCreateAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func verifyUserKey(username string) string {
	return "cv:" + username
}

func verifyIPKey(ip string) string {
	return "cvi:" + ip
}

func createUserKey(username string) string {
	return "cc:" + username
}

func createIPKey(ip string) string {
	return "cci:" + ip
}
