// Package cache stores computed layouts and fetched trees between runs.
//
// A Cache is a plain byte store with per-entry TTLs. Callers build keys with
// a Keyer so that every input affecting a result (tree structure, expansion
// state, layout parameters) ends up in the key:
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().LayoutKey(treeHash, cache.LayoutKeyOpts{...})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    // decode data
//	}
//
// Three backends are provided: FileCache for the CLI, RedisCache for the
// shared HTTP server, and NullCache when caching is disabled.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLTree     = time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired entries
	// are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts holds the parameters that change a computed layout.
type LayoutKeyOpts struct {
	Expanded     []string `json:"expanded"`
	NodeWidth    float64  `json:"node_width"`
	NodeHeight   float64  `json:"node_height"`
	Gap          float64  `json:"gap"`
	LevelSpacing float64  `json:"level_spacing"`
	MaxDepth     int      `json:"max_depth"` // a stricter limit must not reuse a deeper layout
}

// ArtifactKeyOpts holds the parameters that change a rendered file.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	VizType  string  `json:"viz_type"`
	Detailed bool    `json:"detailed"`
	Scale    float64 `json:"scale"`
	Fit      bool    `json:"fit"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Zoom     float64 `json:"zoom"`
	PanX     float64 `json:"pan_x"`
	PanY     float64 `json:"pan_y"`
}

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey identifies a tree fetched from a source.
	TreeKey(source, scope, period, focus string) string

	// LayoutKey identifies a layout of the tree with the given structure hash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of the given layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "<kind>:<fields>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(source, scope, period, focus string) string {
	return "tree:" + source + ":" + hashKey([]string{scope, period, focus})
}

func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return "layout:" + treeHash + ":" + hashKey(opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return fmt.Sprintf("artifact:%s:%s:%s", strings.ToLower(opts.Format), layoutHash, hashKey(opts))
}

// =============================================================================
// NullCache
// =============================================================================

// NullCache never stores anything. It is used when caching is disabled.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
