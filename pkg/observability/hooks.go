// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about document replay, diagram rendering, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReplayHooks(&myReplayHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Instrumented code calls hooks to emit events:
//
//	observability.Replay().OnBuildStart(ctx, treeType, statements)
//	// ... replay the document ...
//	observability.Replay().OnBuildComplete(ctx, treeType, applied, skipped, groups, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Replay Hooks
// =============================================================================

// ReplayHooks receives events from document replay.
type ReplayHooks interface {
	// OnBuildStart records the start of a replay with the declared tree
	// type and the top-level statement count.
	OnBuildStart(ctx context.Context, treeType string, statements int)

	// OnBuildComplete records the outcome of a replay: statements applied
	// and skipped, and the number of group definitions built.
	OnBuildComplete(ctx context.Context, treeType string, applied, skipped, groups int, duration time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from diagram rendering.
type RenderHooks interface {
	// OnRenderStart records the start of a conversion to format.
	OnRenderStart(ctx context.Context, format string)

	// OnRenderComplete records the outcome and output size of a
	// conversion.
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, scope string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, scope string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, scope string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReplayHooks is a no-op implementation of ReplayHooks.
type NoopReplayHooks struct{}

func (NoopReplayHooks) OnBuildStart(context.Context, string, int) {}
func (NoopReplayHooks) OnBuildComplete(context.Context, string, int, int, int, time.Duration, error) {
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                               {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	replayHooks ReplayHooks = NoopReplayHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetReplayHooks registers custom replay hooks.
// This should be called once at application startup before any replay operations.
func SetReplayHooks(h ReplayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		replayHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any render operations.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Replay returns the registered replay hooks.
func Replay() ReplayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return replayHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	replayHooks = NoopReplayHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
