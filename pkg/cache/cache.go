// Package cache provides pluggable byte caches for expensive results.
//
// Parse, render and script outputs are content-addressed with [Key] and
// stored through the [Cache] interface. Three backends ship: [FileCache]
// for single-machine CLI use, [RedisCache] for deployments where several
// replicas share results, and [NullCache] to disable caching outright.
// [NewScoped] namespaces any backend so result kinds never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with a TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value for key. The bool reports whether the key
	// was present and unexpired; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero stores without
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
