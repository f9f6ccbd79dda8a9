// Package prometheus renders credcore metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [credcore.Engine] and exposes an
// [http.Handler] that renders all counters and histograms. Counter names are
// prefixed credcore_*_total; the single histogram is
// credcore_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the
//     Handler where they want it.
//   - Mutate engine state.
package prometheus
