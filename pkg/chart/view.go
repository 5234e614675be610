// Package chart ties the tree model, the layout engine and the viewport into
// one interactive chart.
//
// A View owns the current Tree, the Layout derived from it and a Viewport.
// Every tree change recomputes the layout in full; the viewport keeps its
// zoom and pan unless a fit is requested (or AutoFit is set). Loading a new
// raw tree discards the previous expansion state.
//
//	v := chart.New(chart.DefaultConfig())
//	v.Resize(viewport.Size{Width: 1280, Height: 720})
//	v.Load(ctx, root)       // seeds, lays out, fits
//	v.Toggle(ctx, "cto")    // expands, relayouts
//	snap := v.Snapshot()    // boxes, edges, zoom and pan for painting
//
// View methods are safe for concurrent use.
package chart

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/orgtree"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Config combines the layout and viewport parameters of a view.
type Config struct {
	Layout   layout.Config   `toml:"layout" json:"layout"`
	Viewport viewport.Config `toml:"viewport" json:"viewport"`

	// AutoFit refits after every tree change instead of keeping the
	// current zoom and pan.
	AutoFit bool `toml:"auto_fit" json:"auto_fit"`
}

// DefaultConfig returns the standard chart parameters.
func DefaultConfig() Config {
	return Config{Layout: layout.DefaultConfig(), Viewport: viewport.DefaultConfig()}
}

// Validate checks both parameter sets.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	return c.Viewport.Validate()
}

// Layouter computes layouts. pipeline.Runner implements it with caching.
type Layouter interface {
	Layout(ctx context.Context, t orgtree.Tree, cfg layout.Config) (layout.Layout, bool, error)
}

type computeLayouter struct{}

func (computeLayouter) Layout(_ context.Context, t orgtree.Tree, cfg layout.Config) (layout.Layout, bool, error) {
	l, err := layout.Compute(t, cfg)
	return l, false, err
}

// Option configures a View.
type Option func(*View)

// WithLayouter routes layout computation through l.
func WithLayouter(l Layouter) Option {
	return func(v *View) {
		if l != nil {
			v.layouter = l
		}
	}
}

// Snapshot is everything a renderer needs to paint the chart.
type Snapshot struct {
	Boxes     []layout.Box   `json:"boxes"`
	Edges     []layout.Edge  `json:"edges"`
	Viewport  viewport.State `json:"viewport"`
	Container viewport.Size  `json:"container"`
	Expanded  []string       `json:"expanded"`
	Nodes     int            `json:"nodes"`
}

// View is an interactive chart.
type View struct {
	mu        sync.Mutex
	cfg       Config
	layouter  Layouter
	tree      orgtree.Tree
	layout    layout.Layout
	vp        *viewport.Viewport
	container viewport.Size
	updated   time.Time
}

// New returns an empty view.
func New(cfg Config, opts ...Option) *View {
	v := &View{
		cfg:      cfg,
		layouter: computeLayouter{},
		layout:   layout.Layout{Boxes: []layout.Box{}, Edges: []layout.Edge{}},
		vp:       viewport.New(cfg.Viewport),
		updated:  time.Now(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load seeds raw with the default expansion, lays it out and fits it into
// the container when one is known. A nil raw clears the chart. On error the
// view is left unchanged.
func (v *View) Load(ctx context.Context, raw *orgtree.Node) error {
	tree, err := orgtree.Seed(raw)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.apply(ctx, tree); err != nil {
		return err
	}
	if v.container.Valid() && !v.cfg.AutoFit {
		return v.fit(ctx)
	}
	return nil
}

// Toggle flips the expansion of the node with the given id and relayouts.
// It reports false, and changes nothing, when no node has that id.
func (v *View) Toggle(ctx context.Context, id string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := orgtree.Find(v.tree, id)
	if n == nil {
		return false, nil
	}
	if err := v.apply(ctx, orgtree.Toggle(v.tree, id)); err != nil {
		return false, err
	}
	observability.View().OnToggle(ctx, id, !n.Expanded)
	return true, nil
}

// ExpandAll expands every node and relayouts.
func (v *View) ExpandAll(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.apply(ctx, orgtree.ExpandAll(v.tree))
}

// CollapseDefault returns to the seeded expansion and relayouts.
func (v *View) CollapseDefault(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.apply(ctx, orgtree.CollapseDefault(v.tree))
}

// apply lays out tree and commits it. Callers hold mu.
func (v *View) apply(ctx context.Context, tree orgtree.Tree) error {
	l, _, err := v.layouter.Layout(ctx, tree, v.cfg.Layout)
	if err != nil {
		return err
	}
	v.tree, v.layout = tree, l
	v.touch()
	if v.cfg.AutoFit && v.container.Valid() {
		return v.fit(ctx)
	}
	return nil
}

// Resize records the rendering container size. It does not refit.
func (v *View) Resize(size viewport.Size) error {
	if !size.Valid() {
		return errors.New(errors.ErrCodeInvalidContainer, "container must have positive size, got %gx%g", size.Width, size.Height)
	}
	if size.Height <= v.cfg.Viewport.TopOffset {
		return errors.New(errors.ErrCodeInvalidContainer, "container height %g leaves no room below top offset %g", size.Height, v.cfg.Viewport.TopOffset)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.container = size
	v.touch()
	return nil
}

// Fit fits the visible boxes into the container. It is a no-op on an empty
// chart and fails with INVALID_CONTAINER before Resize.
func (v *View) Fit(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fit(ctx)
}

func (v *View) fit(ctx context.Context) error {
	if len(v.layout.Boxes) == 0 {
		return nil
	}
	if err := v.vp.Fit(v.layout.Boxes, v.container); err != nil {
		return err
	}
	v.touch()
	observability.View().OnFit(ctx, v.vp.Zoom)
	return nil
}

// ZoomIn zooms one step in.
func (v *View) ZoomIn() { v.withViewport((*viewport.Viewport).ZoomIn) }

// ZoomOut zooms one step out.
func (v *View) ZoomOut() { v.withViewport((*viewport.Viewport).ZoomOut) }

// Wheel applies one wheel event.
func (v *View) Wheel(deltaY float64) {
	v.withViewport(func(vp *viewport.Viewport) { vp.ZoomByWheel(deltaY) })
}

// BeginDrag starts panning at screen point p.
func (v *View) BeginDrag(p viewport.Point) {
	v.withViewport(func(vp *viewport.Viewport) { vp.BeginDrag(p) })
}

// Drag pans to follow the pointer at p.
func (v *View) Drag(p viewport.Point) {
	v.withViewport(func(vp *viewport.Viewport) { vp.Drag(p) })
}

// EndDrag stops panning.
func (v *View) EndDrag() { v.withViewport((*viewport.Viewport).EndDrag) }

// CancelDrag stops panning after the pointer left the surface.
func (v *View) CancelDrag() { v.withViewport((*viewport.Viewport).CancelDrag) }

func (v *View) withViewport(fn func(*viewport.Viewport)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.vp)
	v.touch()
}

// BoxAt returns the visible box under screen point p.
func (v *View) BoxAt(p viewport.Point) (layout.Box, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	q := v.vp.ToLayout(p)
	for _, b := range v.layout.Boxes {
		if b.Visible && q.X >= b.Left() && q.X <= b.Right() && q.Y >= b.Y && q.Y <= b.Bottom() {
			return b, true
		}
	}
	return layout.Box{}, false
}

// Snapshot returns a copy of the current boxes, edges and viewport.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	expanded := orgtree.ExpandedIDs(v.tree)
	if expanded == nil {
		expanded = []string{}
	}
	return Snapshot{
		Boxes:     slices.Clone(v.layout.Boxes),
		Edges:     slices.Clone(v.layout.Edges),
		Viewport:  v.vp.State(),
		Container: v.container,
		Expanded:  expanded,
		Nodes:     orgtree.Count(v.tree),
	}
}

// Tree returns the current tree. Trees are immutable, so the result may be
// kept.
func (v *View) Tree() orgtree.Tree {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree
}

// Layout returns the current layout.
func (v *View) Layout() layout.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// Config returns the view's parameters.
func (v *View) Config() Config { return v.cfg }

// Updated returns the time of the last change or interaction.
func (v *View) Updated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

func (v *View) touch() { v.updated = time.Now() }
