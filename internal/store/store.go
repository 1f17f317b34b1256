// Package store narrows the external key/value store to the five primitives
// the coordination protocol relies on: per-key get, set-with-expiry, atomic
// increment, delete, and TTL refresh. No cross-key transactions exist behind
// this interface and callers must not assume any.
package store

import (
	"context"
	"time"
)

type Store interface {
	// GetJSON unmarshals the value at key into dest.
	// The second return is false when the key does not exist (or expired).
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON marshals v and writes it with the given expiry.
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error

	// Incr atomically increments the integer at key and refreshes its expiry,
	// returning the new value. A missing key counts from zero.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Del removes keys; deleting a missing key is not an error.
	Del(ctx context.Context, keys ...string) error

	// Touch extends the expiry of an existing key; a no-op if the key is gone.
	Touch(ctx context.Context, key string, ttl time.Duration) error
}
