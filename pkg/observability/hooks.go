// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about namespace resolution, CallSpec execution, and cache
// operations. Within this module only the executors emit events (CallSpec
// and run events); the resolve and cache hooks have no caller here.
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
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run the engine
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnCallStart(ctx, provider, nsspec)
//	// ... invoke the provider ...
//	observability.Engine().OnCallComplete(ctx, provider, nsspec, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from namespace resolution, CallSpec execution,
// and a full engine run.
type EngineHooks interface {
	// Resolve events describe one concrete namespace spec being resolved.
	// The config resolver in this module does not emit them.
	OnResolveStart(ctx context.Context, nsspec string)
	OnResolveComplete(ctx context.Context, nsspec string, duration time.Duration, err error)

	// Call events fire once per CallSpec the builder schedules and the
	// executor invokes.
	OnCallStart(ctx context.Context, provider, nsspec string)
	OnCallComplete(ctx context.Context, provider, nsspec string, duration time.Duration, err error)

	// Run events bracket a full engine run over one input document.
	OnRunStart(ctx context.Context, parallel bool, callCount int)
	OnRunComplete(ctx context.Context, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType identifies which
// kind of key was involved (e.g. "result", "config", "template"). The caches
// in pkg/cache do not emit these events.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnResolveStart(context.Context, string)                         {}
func (NoopEngineHooks) OnResolveComplete(context.Context, string, time.Duration, error) {}
func (NoopEngineHooks) OnCallStart(context.Context, string, string)                     {}
func (NoopEngineHooks) OnCallComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopEngineHooks) OnRunStart(context.Context, bool, int)               {}
func (NoopEngineHooks) OnRunComplete(context.Context, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine runs.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
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

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
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
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
}
