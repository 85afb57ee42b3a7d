// Package observability provides hooks for metrics, tracing, and logging.
//
// The composition engine emits events through hook interfaces with no-op
// defaults, so embedding services can attach Prometheus counters or traces
// without photobook depending on any observability backend. The CLI
// registers [LogHooks] when running verbosely.
//
// Register hooks once at startup:
//
//	func main() {
//	    observability.SetPipelineHooks(myPipelineHooks{})
//	    observability.SetCacheHooks(myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call the registered hooks:
//
//	observability.Pipeline().OnComposeStart(ctx, len(photos))
//	// ... compose ...
//	observability.Pipeline().OnComposeComplete(ctx, len(pages), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from a composition run.
type PipelineHooks interface {
	OnComposeStart(ctx context.Context, photos int)
	OnComposeComplete(ctx context.Context, pages int, duration time.Duration, err error)

	// OnGrouped fires once the stream is split into pages.
	OnGrouped(ctx context.Context, groups int, duration time.Duration)

	// OnPageChosen fires for every page in order.
	OnPageChosen(ctx context.Context, page int, templateID string, score float64, fallback bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Feature Hooks
// =============================================================================

// FeatureHooks receives events from feature store reads.
type FeatureHooks interface {
	// OnFeaturesLoaded records one prefetch: how many photos were asked for
	// and how many had features.
	OnFeaturesLoaded(ctx context.Context, backend string, requested, found int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnComposeStart(context.Context, int)                          {}
func (NoopPipelineHooks) OnComposeComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnGrouped(context.Context, int, time.Duration)                {}
func (NoopPipelineHooks) OnPageChosen(context.Context, int, string, float64, bool)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopFeatureHooks is a no-op implementation of FeatureHooks.
type NoopFeatureHooks struct{}

func (NoopFeatureHooks) OnFeaturesLoaded(context.Context, string, int, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	featureHooks  FeatureHooks  = NoopFeatureHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetFeatureHooks registers feature hooks. Nil is ignored.
func SetFeatureHooks(h FeatureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		featureHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Features returns the registered feature hooks.
func Features() FeatureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return featureHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	featureHooks = NoopFeatureHooks{}
}
