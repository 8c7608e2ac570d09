package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache so every key carries a namespace prefix. Handy
// when several result kinds share one backend:
//
//	parse := cache.NewScoped(backend, "parse:")
//	svg := cache.NewScoped(backend, "render:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a prefixed view of inner.
// A nil inner degrades to a NullCache.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves the prefixed key from the wrapped cache.
func (c *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores under the prefixed key.
func (c *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close is a no-op. Several scopes can share one backend, so whoever
// created the inner cache closes it.
func (c *Scoped) Close() error {
	return nil
}

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
