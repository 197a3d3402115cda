// Package dedup tracks already-processed idempotency tokens. The store is
// injectable: an in-memory set for tests and single-process deployments, and
// a bbolt-backed store when records must survive restarts.
package dedup

import "context"

// Store records idempotency tokens with an atomic insert-if-absent
// primitive, so two concurrent requests with the same token cannot both pass
// the duplicate check.
type Store interface {
	// Add inserts id if absent and reports whether it was inserted. A false
	// return means the token was already recorded.
	Add(ctx context.Context, id string) (bool, error)
	// Remove deletes a recorded token, releasing it for a later retry.
	Remove(ctx context.Context, id string) error
	// Len returns the number of recorded tokens.
	Len(ctx context.Context) (int, error)
	// Close releases any resources held by the store.
	Close() error
}
