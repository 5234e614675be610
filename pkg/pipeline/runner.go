package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/orgtree"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/render/nodelink"
	"github.com/matzehuels/orgchart/pkg/render/svg"
	"github.com/matzehuels/orgchart/pkg/source"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute fetches the tree, applies the requested expansion, lays it out
// and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	start := time.Now()
	fetched, hit, err := r.FetchWithCacheInfo(ctx, opts.Source, opts.Key, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	res.Stats.FetchTime = time.Since(start)
	res.CacheInfo.FetchHit = hit
	res.Orphans = fetched.Orphans

	tree, err := orgtree.Seed(fetched.Root)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if opts.ExpandAll {
		tree = orgtree.ExpandAll(tree)
	} else {
		tree = Expand(tree, opts.Expand)
	}
	res.Tree = tree
	res.TreeHash = TreeHash(tree)
	res.Stats.NodeCount = orgtree.Count(tree)

	r.Logger.Info("fetched organization",
		"source", opts.Source.Name(),
		"nodes", res.Stats.NodeCount,
		"orphans", len(res.Orphans),
		"duration", res.Stats.FetchTime)
	if len(res.Orphans) > 0 {
		r.Logger.Warn("positions unreachable from root were skipped", "count", len(res.Orphans))
	}

	start = time.Now()
	l, hit, err := r.Layout(ctx, tree, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.Stats.LayoutTime = time.Since(start)
	res.Stats.BoxCount = len(l.Boxes)
	res.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout", "boxes", len(l.Boxes), "duration", res.Stats.LayoutTime)

	vp := viewport.New(opts.Viewport)
	if opts.Fit {
		if err := vp.Fit(l.Boxes, opts.Container); err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
		observability.View().OnFit(ctx, vp.Zoom)
	}
	res.Viewport = vp.State()

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, res.Viewport, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)
	return res, nil
}

// FetchWithCacheInfo reads a tree from src. Results of sources implementing
// source.Cacheable are cached unless refresh is set.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, src source.Source, key source.Key, refresh bool) (source.Result, bool, error) {
	var (
		ttl      time.Duration
		cacheKey string
	)
	if c, ok := src.(source.Cacheable); ok {
		ttl = c.CacheTTL()
	}
	if ttl > 0 {
		cacheKey = r.Keyer.TreeKey(src.Name(), key.Scope, key.Period, key.Focus)
		if !refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				var cached source.Result
				if err := json.Unmarshal(data, &cached); err == nil {
					observability.Cache().OnCacheHit(ctx, "tree")
					return cached, true, nil
				}
			}
			observability.Cache().OnCacheMiss(ctx, "tree")
		}
	}

	observability.Source().OnFetchStart(ctx, src.Name())
	start := time.Now()
	res, err := src.Fetch(ctx, key)
	observability.Source().OnFetchComplete(ctx, src.Name(), len(source.Flatten(res.Root))+len(res.Orphans), time.Since(start), err)
	if err != nil {
		return source.Result{}, false, err
	}

	if cacheKey != "" {
		r.store(ctx, "tree", cacheKey, res, ttl)
	}
	return res, false, nil
}

// Layout computes the layout of t, reusing a cached result when the same
// tree, expansion and configuration were laid out before.
func (r *Runner) Layout(ctx context.Context, t orgtree.Tree, cfg layout.Config) (layout.Layout, bool, error) {
	if err := cfg.Validate(); err != nil {
		return layout.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(TreeHash(t), cache.LayoutKeyOpts{
		Expanded:     ExpansionSignature(t),
		NodeWidth:    cfg.NodeWidth,
		NodeHeight:   cfg.NodeHeight,
		Gap:          cfg.Gap,
		LevelSpacing: cfg.LevelSpacing,
		MaxDepth:     cfg.MaxDepth,
	})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached layout.Layout
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil
		}
	} else if err != nil {
		r.Logger.Debug("layout cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, orgtree.Count(t))
	start := time.Now()
	l, err := layout.Compute(t, cfg)
	hooks.OnLayoutComplete(ctx, len(l.Boxes), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	r.store(ctx, "layout", cacheKey, l, cache.TTLLayout)
	return l, false, nil
}

// RenderWithCacheInfo renders l in every format of opts. The bool reports
// whether all artifacts came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, state viewport.State, opts Options) (map[string][]byte, bool, error) {
	layoutHash, err := cache.HashJSON(l)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{
			Format:   format,
			VizType:  opts.VizType,
			Detailed: opts.Detailed,
			Scale:    opts.Scale,
			Fit:      opts.Fit,
			Width:    opts.Container.Width,
			Height:   opts.Container.Height,
			Zoom:     state.Zoom,
			PanX:     state.Pan.X,
			PanY:     state.Pan.Y,
		})
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		if data, hit, err := r.Cache.Get(ctx, keyFor(f)); err == nil && hit {
			artifacts[f] = data
		}
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	for _, f := range opts.Formats {
		if _, ok := artifacts[f]; ok {
			continue
		}
		data, err := r.renderFormat(ctx, l, state, opts, f)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", f, err)
		}
		artifacts[f] = data
		if err := r.Cache.Set(ctx, keyFor(f), data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("artifact cache write failed", "format", f, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// LayoutDocument is the JSON export of a layout and the viewport it was
// rendered with.
type LayoutDocument struct {
	Boxes    []layout.Box   `json:"boxes"`
	Edges    []layout.Edge  `json:"edges"`
	Viewport viewport.State `json:"viewport"`
}

func (r *Runner) renderFormat(ctx context.Context, l layout.Layout, state viewport.State, opts Options, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(LayoutDocument{Boxes: l.Boxes, Edges: l.Edges, Viewport: state}, "", "  ")
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})), nil
	}

	doc, err := r.renderSVG(ctx, l, state, opts)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return render.ToPDF(ctx, doc)
	case FormatPNG:
		return render.ToPNG(ctx, doc, opts.Scale)
	}
	return doc, nil
}

func (r *Runner) renderSVG(ctx context.Context, l layout.Layout, state viewport.State, opts Options) ([]byte, error) {
	if opts.VizType == VizNodelink {
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
	}
	var svgOpts []svg.Option
	if opts.Fit {
		svgOpts = append(svgOpts, svg.WithViewport(state, opts.Container))
	}
	return svg.Render(l, svgOpts...), nil
}

// store marshals v into the cache. Failures are logged and otherwise
// ignored; the cache is an optimization.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Debug("cache encode failed", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
