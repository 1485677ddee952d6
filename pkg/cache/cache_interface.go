package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer so the implementation can be
// swapped (Redis, in-memory for tests).
type Cache interface {
	// Get loads a key into dest.
	// found = true: cache hit, dest populated.
	// found = false: cache miss, dest untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error

	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
