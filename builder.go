package credcore

import (
	"errors"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credcore/credcore/internal/rate"
	"github.com/credcore/credcore/password"
)

// Builder assembles an [Engine]. Start with [New], chain the With methods,
// then call [Builder.Build] exactly once.
type Builder struct {
	config      Config
	store       UserStore
	redisClient redis.UniversalClient
	auditSink   AuditSink
	clock       func() time.Time
	built       bool
}

// New returns a [Builder] preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration. Call it before the more
// specific With methods or it will overwrite them.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the user store backing the engine. Required.
func (b *Builder) WithStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithRedis sets the Redis client backing the throttles. Required when any
// throttle is enabled.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redisClient = client
	return b
}

// WithAuditSink enables audit emission into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithClock overrides the engine's time source. Lockout deadlines and audit
// timestamps follow it; intended for tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles verification latency histograms. Implies
// nothing unless metrics are enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the components and returns a
// ready [Engine]. A Builder builds once; reusing it returns an error.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used; create a new Builder")
	}
	b.built = true

	if b.store == nil {
		return nil, errors.New("a UserStore is required; use WithStore")
	}

	throttleOn := b.config.Throttle.EnableUsernameThrottle || b.config.Throttle.EnableIPThrottle
	if throttleOn && b.redisClient == nil {
		return nil, errors.New("throttling is enabled but no Redis client was provided; use WithRedis")
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	usernameRE, err := regexp.Compile(b.config.Username.Pattern)
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      b.config.Secret.Memory,
		Time:        b.config.Secret.Time,
		Parallelism: b.config.Secret.Parallelism,
		SaltLength:  b.config.Secret.SaltLength,
		KeyLength:   b.config.Secret.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if throttleOn {
		limiter = rate.New(b.redisClient, rate.Config{
			EnableUsernameThrottle: b.config.Throttle.EnableUsernameThrottle,
			EnableIPThrottle:       b.config.Throttle.EnableIPThrottle,
			MaxVerifyAttempts:      b.config.Throttle.MaxVerifyAttempts,
			VerifyCooldown:         b.config.Throttle.VerifyCooldown,
			MaxCreateAttempts:      b.config.Throttle.MaxCreateAttempts,
			CreateCooldown:         b.config.Throttle.CreateCooldown,
		})
	}

	var dispatcher *auditDispatcher
	if b.config.Audit.Enabled && b.auditSink != nil {
		dispatcher = newAuditDispatcher(b.config.Audit, b.auditSink)
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		config:     b.config,
		store:      b.store,
		hasher:     hasher,
		limiter:    limiter,
		audit:      dispatcher,
		metrics:    NewMetrics(b.config.Metrics),
		usernameRE: usernameRE,
		clock:      clock,
	}, nil
}
