package internaldefs

import (
	"github.com/credcore/credcore"
)

// CounterDef binds a core counter ID to its exported name and help text.
type CounterDef struct {
	ID   credcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   credcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: credcore.MetricVerifySuccess, Name: "credcore_verify_success_total", Help: "Successful credential verifications."},
	{ID: credcore.MetricVerifyFailure, Name: "credcore_verify_failure_total", Help: "Failed credential verifications."},
	{ID: credcore.MetricVerifyUnknownUser, Name: "credcore_verify_unknown_user_total", Help: "Verification attempts against unknown usernames."},
	{ID: credcore.MetricVerifyLocked, Name: "credcore_verify_locked_total", Help: "Verification attempts rejected by an active lockout."},
	{ID: credcore.MetricVerifyRateLimited, Name: "credcore_verify_rate_limited_total", Help: "Rate-limited verification attempts."},
	{ID: credcore.MetricLockoutTriggered, Name: "credcore_lockout_triggered_total", Help: "Account lockouts triggered."},
	{ID: credcore.MetricLockoutCleared, Name: "credcore_lockout_cleared_total", Help: "Account lockouts cleared."},
	{ID: credcore.MetricCreateSuccess, Name: "credcore_user_create_success_total", Help: "Successful user creations."},
	{ID: credcore.MetricCreateDuplicate, Name: "credcore_user_create_duplicate_total", Help: "User creation attempts rejected as duplicate."},
	{ID: credcore.MetricCreateInvalid, Name: "credcore_user_create_invalid_total", Help: "User creation attempts rejected by input policy."},
	{ID: credcore.MetricCreateRateLimited, Name: "credcore_user_create_rate_limited_total", Help: "Rate-limited user creation attempts."},
	{ID: credcore.MetricHashUpgraded, Name: "credcore_hash_upgraded_total", Help: "Stored hashes transparently re-hashed with current parameters."},
	{ID: credcore.MetricRateLimitHit, Name: "credcore_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
}

// HistogramDefs lists every exported histogram in a stable order.
var HistogramDefs = []HistogramDef{
	{ID: credcore.MetricVerifyLatency, Name: "credcore_verify_latency_seconds", Help: "Verification latency histogram."},
}

// HistogramBounds are the upper bounds of the core's fixed latency buckets,
// rendered as Prometheus le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters safe for
// metric name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a raw bucket slice into the fixed-size array the
// exporters work with, tolerating short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
