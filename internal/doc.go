// Package internal contains helpers that are intentionally private to
// credcore.
//
// # Sub-packages
//
//   - rate — Redis-backed fixed-window throttles for verify/create
//
// # What this package must NOT do
//
//   - Export types that appear in the public credcore API.
//   - Be imported by any package outside the credcore module.
package internal
