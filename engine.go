package credcore

import (
	"regexp"
	"time"

	"github.com/credcore/credcore/internal/rate"
	"github.com/credcore/credcore/password"
)

// Engine is the credential-authentication core. Construct it through
// [Builder.Build]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config     Config
	store      UserStore
	hasher     *password.Hasher
	limiter    *rate.Limiter
	audit      *auditDispatcher
	metrics    *Metrics
	usernameRE *regexp.Regexp
	clock      func() time.Time
}

// Close stops the audit dispatcher after draining buffered events. The
// engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events shed under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}

func (e *Engine) lockoutActive(rec UserRecord, now time.Time) bool {
	return !rec.LockedUntil.IsZero() && rec.LockedUntil.After(now)
}
