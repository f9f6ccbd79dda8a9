// Package memstore provides an in-memory credcore.UserStore for tests,
// examples and single-process deployments. Records live in a map guarded by
// a store-level mutex for membership and a per-record mutex for mutation, so
// failure accounting on one account never contends with another.
package memstore
