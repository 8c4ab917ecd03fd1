// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about sheet edits and artifact cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [NewMetricHooks] is the OpenTelemetry-backed implementation used by the
// serve command.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks, _ := observability.NewMetricHooks(meter)
//	    observability.SetSheetHooks(hooks)
//	    // ... run application
//	}
//
// Sheets call hooks to emit events:
//
//	observability.Sheet().OnSet(observability.KindFormula)
//	observability.Sheet().OnInvalidate(n)
package observability

import (
	"context"
	"sync"
)

// ContentKind names the state a cell was moved into by an edit.
type ContentKind string

const (
	KindEmpty   ContentKind = "empty"
	KindText    ContentKind = "text"
	KindFormula ContentKind = "formula"
)

// =============================================================================
// Sheet Hooks
// =============================================================================

// SheetHooks receives events from sheet edits.
type SheetHooks interface {
	// OnSet records an accepted edit and the resulting content kind.
	OnSet(kind ContentKind)

	// OnRejected records an edit that left the sheet unchanged, keyed by
	// error code (FORMULA_PARSE, CIRCULAR_DEPENDENCY, ...).
	OnRejected(code string)

	// OnEvaluate records a formula evaluation that missed the cache.
	OnEvaluate()

	// OnInvalidate records how many cached values one edit discarded.
	OnInvalidate(count int)

	// OnClear records a clear and whether the cell slot was released.
	OnClear(released bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
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

// NoopSheetHooks is a no-op implementation of SheetHooks.
type NoopSheetHooks struct{}

func (NoopSheetHooks) OnSet(ContentKind) {}
func (NoopSheetHooks) OnRejected(string) {}
func (NoopSheetHooks) OnEvaluate()       {}
func (NoopSheetHooks) OnInvalidate(int)  {}
func (NoopSheetHooks) OnClear(bool)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sheetHooks SheetHooks = NoopSheetHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetSheetHooks registers custom sheet hooks.
// Sheets pick up the registered hooks when they are created.
func SetSheetHooks(h SheetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sheetHooks = h
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

// Sheet returns the registered sheet hooks.
func Sheet() SheetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sheetHooks
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
	sheetHooks = NoopSheetHooks{}
	cacheHooks = NoopCacheHooks{}
}
