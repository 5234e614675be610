// Package observability lets the application observe layout, cache, source
// and view events without the libraries depending on a metrics backend.
//
// Libraries call the registered hooks; main registers implementations once
// at startup:
//
//	observability.SetLayoutHooks(observability.NewLogHooks(logger))
//
//	// in a library
//	observability.Layout().OnLayoutStart(ctx, nodeCount)
//
// Every hook defaults to a no-op.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook interfaces
// =============================================================================

// LayoutHooks receives layout computations.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, boxCount int, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "tree", "layout"
// or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// SourceHooks receives tree fetches from external sources.
type SourceHooks interface {
	OnFetchStart(ctx context.Context, source string)
	OnFetchComplete(ctx context.Context, source string, positions int, duration time.Duration, err error)
}

// ViewHooks receives user interactions with a chart.
type ViewHooks interface {
	OnToggle(ctx context.Context, nodeID string, expanded bool)
	OnFit(ctx context.Context, zoom float64)
}

// =============================================================================
// No-op implementations
// =============================================================================

type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetchStart(context.Context, string)                               {}
func (NoopSourceHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}

type NoopViewHooks struct{}

func (NoopViewHooks) OnToggle(context.Context, string, bool) {}
func (NoopViewHooks) OnFit(context.Context, float64)         {}

// =============================================================================
// Registry
// =============================================================================

var (
	hooksMu     sync.RWMutex
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	viewHooks   ViewHooks   = NoopViewHooks{}
)

// SetLayoutHooks registers layout hooks. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSourceHooks registers source hooks. A nil h is ignored.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetViewHooks registers view hooks. A nil h is ignored.
func SetViewHooks(h ViewHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewHooks = h
	}
}

// SetAll registers h for every hook interface it implements.
func SetAll(h any) {
	if l, ok := h.(LayoutHooks); ok {
		SetLayoutHooks(l)
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
	}
	if s, ok := h.(SourceHooks); ok {
		SetSourceHooks(s)
	}
	if v, ok := h.(ViewHooks); ok {
		SetViewHooks(v)
	}
}

func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

func View() ViewHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewHooks
}

// Reset restores the no-op defaults. Tests use it to isolate registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	sourceHooks = NoopSourceHooks{}
	viewHooks = NoopViewHooks{}
}
