// Package credcore implements a credential-authentication core: account
// creation with Argon2id secret hashing, verification with constant-time
// comparison, per-account lockout after repeated failures, and optional
// Redis-backed attempt throttling in front of the hash.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// credcore is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserStore] seam, and value types (MetricsSnapshot, AuditEvent,
// SecurityReport). Redis key layouts and throttle internals live under
// internal/ and are never exported. A reference in-memory [UserStore] lives
// in the memstore sub-package; durable backends plug in behind the same
// interface without touching the core.
//
// # What this package must NOT do
//
//   - Issue tokens or manage sessions — callers invoke their token issuer
//     only after VerifyCredential returns nil.
//   - Persist anything itself — all record state goes through [UserStore].
//   - Expose Redis clients or throttle key formats in its public API.
//
// # Performance contract
//
// VerifyCredential is the hot path. Apart from the deliberate Argon2id cost
// it performs at most one store round-trip on success and two on failure,
// and never holds a store lock across hash computation.
package credcore
