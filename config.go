package credcore

import (
	"errors"
	"regexp"
	"time"
)

// Config carries every tunable of the engine. Populate it before
// [Builder.Build]; the engine treats it as immutable afterwards.
type Config struct {
	Secret   SecretConfig
	Username UsernameConfig
	Lockout  LockoutConfig
	Throttle ThrottleConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// SecretConfig tunes the Argon2id hashing primitive and the secret policy.
type SecretConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the minimum secret length in bytes accepted at creation.
	MinLength int
	// UpgradeOnVerify re-hashes the stored secret with current parameters
	// after a successful verification when the stored hash was produced
	// with weaker ones. The update is best-effort and never blocks success.
	UpgradeOnVerify bool
}

// UsernameConfig is the explicit username format policy. Usernames always
// compare case-sensitively.
type UsernameConfig struct {
	// Pattern is an anchored regular expression every username must match.
	Pattern   string
	MinLength int
	MaxLength int
}

// LockoutConfig controls per-account lockout, the last line of defense
// behind any external rate-limiting layer.
type LockoutConfig struct {
	Enabled bool
	// Threshold is the consecutive-failure count that triggers lockout.
	Threshold int
	// Duration is how long the account stays locked once triggered.
	Duration time.Duration
}

// ThrottleConfig controls the Redis-backed fixed-window throttles applied
// before any store or hash work. Requires a Redis client at Build when any
// throttle is enabled.
type ThrottleConfig struct {
	EnableUsernameThrottle bool
	EnableIPThrottle       bool
	MaxVerifyAttempts      int
	VerifyCooldown         time.Duration
	MaxCreateAttempts      int
	CreateCooldown         time.Duration
}

// SecurityConfig holds cross-cutting policy switches.
type SecurityConfig struct {
	// SuppressUnknownUser makes verification against a missing username
	// indistinguishable from a wrong secret (anti-enumeration). When
	// disabled, ErrUnknownUser is reported distinctly.
	SuppressUnknownUser bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking the
	// calling operation. Dropped events are counted.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: OWASP-shaped Argon2id
// parameters, a five-failure 15-minute lockout, and enumeration suppression
// on. Throttles default on and need a Redis client.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Secret: SecretConfig{
			Memory:          65536,
			Time:            3,
			Parallelism:     2,
			SaltLength:      16,
			KeyLength:       32,
			MinLength:       10,
			UpgradeOnVerify: true,
		},
		Username: UsernameConfig{
			Pattern:   `^[A-Za-z0-9][A-Za-z0-9._-]*$`,
			MinLength: 3,
			MaxLength: 64,
		},
		Lockout: LockoutConfig{
			Enabled:   true,
			Threshold: 5,
			Duration:  15 * time.Minute,
		},
		Throttle: ThrottleConfig{
			EnableUsernameThrottle: true,
			EnableIPThrottle:       true,
			MaxVerifyAttempts:      10,
			VerifyCooldown:         15 * time.Minute,
			MaxCreateAttempts:      5,
			CreateCooldown:         15 * time.Minute,
		},
		Security: SecurityConfig{
			SuppressUnknownUser: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// PresetHardened returns a configuration for hostile environments: stronger
// Argon2id cost, a three-failure 30-minute lockout, and tighter throttles.
func PresetHardened() Config {
	cfg := defaultConfig()
	cfg.Secret.Memory = 131072
	cfg.Secret.Time = 4
	cfg.Secret.MinLength = 12
	cfg.Lockout.Threshold = 3
	cfg.Lockout.Duration = 30 * time.Minute
	cfg.Throttle.MaxVerifyAttempts = 5
	cfg.Throttle.MaxCreateAttempts = 3
	return cfg
}

// PresetInteractive returns a configuration tuned for latency-sensitive
// interactive logins. Hash cost stays at the defaults; lockout and
// throttles are more forgiving.
func PresetInteractive() Config {
	cfg := defaultConfig()
	cfg.Lockout.Threshold = 10
	cfg.Lockout.Duration = 5 * time.Minute
	cfg.Throttle.MaxVerifyAttempts = 20
	cfg.Throttle.VerifyCooldown = 5 * time.Minute
	return cfg
}

// Validate checks the configuration for internal consistency. Build calls
// it; callers constructing configs by hand can call it early.
func (c *Config) Validate() error {
	// Secret
	if c.Secret.Memory < 8*1024 {
		return errors.New("Secret Memory must be >= 8192 KB")
	}
	if c.Secret.Time < 1 {
		return errors.New("Secret Time must be >= 1")
	}
	if c.Secret.Parallelism < 1 {
		return errors.New("Secret Parallelism must be >= 1")
	}
	if c.Secret.SaltLength < 16 {
		return errors.New("Secret SaltLength must be >= 16")
	}
	if c.Secret.KeyLength < 16 {
		return errors.New("Secret KeyLength must be >= 16")
	}
	if c.Secret.MinLength < 8 {
		return errors.New("Secret MinLength must be >= 8")
	}

	// Username
	if c.Username.Pattern == "" {
		return errors.New("Username Pattern must be set")
	}
	if _, err := regexp.Compile(c.Username.Pattern); err != nil {
		return errors.New("Username Pattern is not a valid regular expression")
	}
	if c.Username.MinLength < 1 {
		return errors.New("Username MinLength must be >= 1")
	}
	if c.Username.MaxLength < c.Username.MinLength {
		return errors.New("Username MaxLength must be >= MinLength")
	}

	// Lockout
	if c.Lockout.Enabled {
		if c.Lockout.Threshold <= 0 {
			return errors.New("Lockout Threshold must be > 0 when enabled")
		}
		if c.Lockout.Duration <= 0 {
			return errors.New("Lockout Duration must be > 0 when enabled")
		}
	}

	// Throttle
	if c.Throttle.EnableUsernameThrottle || c.Throttle.EnableIPThrottle {
		if c.Throttle.MaxVerifyAttempts <= 0 {
			return errors.New("Throttle MaxVerifyAttempts must be > 0")
		}
		if c.Throttle.VerifyCooldown <= 0 {
			return errors.New("Throttle VerifyCooldown must be > 0")
		}
		if c.Throttle.MaxCreateAttempts <= 0 {
			return errors.New("Throttle MaxCreateAttempts must be > 0")
		}
		if c.Throttle.CreateCooldown <= 0 {
			return errors.New("Throttle CreateCooldown must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
