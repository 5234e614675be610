package observability

import (
	"context"
	"time"
)

// Multi forwards every event to each of its members that handles it.
type Multi []any

func (m Multi) OnLayoutStart(ctx context.Context, nodeCount int) {
	for _, h := range m {
		if l, ok := h.(LayoutHooks); ok {
			l.OnLayoutStart(ctx, nodeCount)
		}
	}
}

func (m Multi) OnLayoutComplete(ctx context.Context, boxCount int, d time.Duration, err error) {
	for _, h := range m {
		if l, ok := h.(LayoutHooks); ok {
			l.OnLayoutComplete(ctx, boxCount, d, err)
		}
	}
}

func (m Multi) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheHit(ctx, keyType)
		}
	}
}

func (m Multi) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheMiss(ctx, keyType)
		}
	}
}

func (m Multi) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheSet(ctx, keyType, size)
		}
	}
}

func (m Multi) OnFetchStart(ctx context.Context, source string) {
	for _, h := range m {
		if s, ok := h.(SourceHooks); ok {
			s.OnFetchStart(ctx, source)
		}
	}
}

func (m Multi) OnFetchComplete(ctx context.Context, source string, positions int, d time.Duration, err error) {
	for _, h := range m {
		if s, ok := h.(SourceHooks); ok {
			s.OnFetchComplete(ctx, source, positions, d, err)
		}
	}
}

func (m Multi) OnToggle(ctx context.Context, nodeID string, expanded bool) {
	for _, h := range m {
		if v, ok := h.(ViewHooks); ok {
			v.OnToggle(ctx, nodeID, expanded)
		}
	}
}

func (m Multi) OnFit(ctx context.Context, zoom float64) {
	for _, h := range m {
		if v, ok := h.(ViewHooks); ok {
			v.OnFit(ctx, zoom)
		}
	}
}

var (
	_ LayoutHooks = Multi(nil)
	_ CacheHooks  = Multi(nil)
	_ SourceHooks = Multi(nil)
	_ ViewHooks   = Multi(nil)
)
