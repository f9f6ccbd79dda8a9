// Package rate provides the Redis-backed fixed-window throttles applied in
// front of the credential core.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - cv:  — verify per-username
//   - cvi: — verify per-IP
//   - cc:  — create per-username
//   - cci: — create per-IP
//
// # What this package must NOT do
//
//   - Implement lockout policy (that lives in the UserStore record state).
//   - Be imported outside the credcore module.
package rate
