package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters tallies events in memory. The HTTP server exposes a snapshot on
// its stats endpoint.
type Counters struct {
	layouts      atomic.Int64
	layoutErrors atomic.Int64
	layoutNanos  atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	fetches      atomic.Int64
	fetchErrors  atomic.Int64
	toggles      atomic.Int64
	fits         atomic.Int64
}

// CounterSnapshot is a point-in-time copy of Counters.
type CounterSnapshot struct {
	Layouts      int64         `json:"layouts"`
	LayoutErrors int64         `json:"layout_errors"`
	LayoutTime   time.Duration `json:"layout_time_ns"`
	CacheHits    int64         `json:"cache_hits"`
	CacheMisses  int64         `json:"cache_misses"`
	Fetches      int64         `json:"fetches"`
	FetchErrors  int64         `json:"fetch_errors"`
	Toggles      int64         `json:"toggles"`
	Fits         int64         `json:"fits"`
}

func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Layouts:      c.layouts.Load(),
		LayoutErrors: c.layoutErrors.Load(),
		LayoutTime:   time.Duration(c.layoutNanos.Load()),
		CacheHits:    c.cacheHits.Load(),
		CacheMisses:  c.cacheMisses.Load(),
		Fetches:      c.fetches.Load(),
		FetchErrors:  c.fetchErrors.Load(),
		Toggles:      c.toggles.Load(),
		Fits:         c.fits.Load(),
	}
}

func (c *Counters) OnLayoutStart(context.Context, int) {}

func (c *Counters) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	c.layouts.Add(1)
	c.layoutNanos.Add(int64(d))
	if err != nil {
		c.layoutErrors.Add(1)
	}
}

func (c *Counters) OnCacheHit(context.Context, string)      { c.cacheHits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string)     { c.cacheMisses.Add(1) }
func (c *Counters) OnCacheSet(context.Context, string, int) {}

func (c *Counters) OnFetchStart(context.Context, string) {}

func (c *Counters) OnFetchComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	c.fetches.Add(1)
	if err != nil {
		c.fetchErrors.Add(1)
	}
}

func (c *Counters) OnToggle(context.Context, string, bool) { c.toggles.Add(1) }
func (c *Counters) OnFit(context.Context, float64)         { c.fits.Add(1) }
