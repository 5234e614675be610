// Package viewport owns the zoom factor and pan offset applied to a chart
// layout before it is painted.
//
// A renderer paints every layout point p at pan + p*zoom. The controller is
// independent of the layout engine: it only consumes a bounding rectangle
// when asked to fit the content into the rendering container.
//
//	vp := viewport.New(viewport.DefaultConfig())
//	vp.Fit(l.Boxes, viewport.Size{Width: 1280, Height: 720})
//	vp.ZoomIn()
//	vp.BeginDrag(viewport.Point{X: 10, Y: 10})
//	vp.Drag(viewport.Point{X: 60, Y: 30}) // pan moved by (50, 20)
//	vp.EndDrag()
//
// All operations are synchronous and update only the Viewport value. A
// Viewport is not safe for concurrent use; callers that share one across
// goroutines must guard it.
package viewport

import (
	"math"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// Default interaction parameters.
const (
	DefaultMinZoom   = 0.3
	DefaultMaxZoom   = 2.0
	DefaultZoomStep  = 0.1
	DefaultFitMargin = 200.0
	DefaultTopOffset = 80.0
)

// Config holds the zoom limits and fit parameters.
type Config struct {
	MinZoom   float64 `json:"min_zoom" toml:"min_zoom"`
	MaxZoom   float64 `json:"max_zoom" toml:"max_zoom"`
	ZoomStep  float64 `json:"zoom_step" toml:"zoom_step"`
	FitMargin float64 `json:"fit_margin" toml:"fit_margin"` // Added around the content on every side
	TopOffset float64 `json:"top_offset" toml:"top_offset"` // Screen y of the fitted content's top edge
}

// DefaultConfig returns the standard interaction parameters.
func DefaultConfig() Config {
	return Config{
		MinZoom:   DefaultMinZoom,
		MaxZoom:   DefaultMaxZoom,
		ZoomStep:  DefaultZoomStep,
		FitMargin: DefaultFitMargin,
		TopOffset: DefaultTopOffset,
	}
}

// Validate checks that the limits are usable.
func (c Config) Validate() error {
	switch {
	case c.MinZoom <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "min zoom must be positive, got %g", c.MinZoom)
	case c.MaxZoom < c.MinZoom:
		return errors.New(errors.ErrCodeInvalidConfig, "max zoom %g is below min zoom %g", c.MaxZoom, c.MinZoom)
	case c.ZoomStep <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "zoom step must be positive, got %g", c.ZoomStep)
	case c.FitMargin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "fit margin cannot be negative, got %g", c.FitMargin)
	case c.TopOffset < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "top offset cannot be negative, got %g", c.TopOffset)
	}
	return nil
}

// Point is a position in screen or layout coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is the pixel size of the rendering container.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// State is the serializable part of a Viewport.
type State struct {
	Zoom     float64 `json:"zoom"`
	Pan      Point   `json:"pan"`
	Dragging bool    `json:"dragging"`
}

// Viewport is the zoom/pan controller.
type Viewport struct {
	Zoom     float64
	Pan      Point
	Dragging bool

	cfg       Config
	dragStart Point
}

// New returns a viewport at zoom 1 with no pan.
func New(cfg Config) *Viewport {
	return &Viewport{Zoom: 1, cfg: cfg}
}

// Config returns the viewport's parameters.
func (v *Viewport) Config() Config { return v.cfg }

// State returns a copy of the current zoom, pan and drag flag.
func (v *Viewport) State() State {
	return State{Zoom: v.Zoom, Pan: v.Pan, Dragging: v.Dragging}
}

func (v *Viewport) clamp(z float64) float64 {
	return math.Max(v.cfg.MinZoom, math.Min(v.cfg.MaxZoom, z))
}

// ZoomIn increases the zoom by one step, up to MaxZoom.
func (v *Viewport) ZoomIn() { v.Zoom = v.clamp(v.Zoom + v.cfg.ZoomStep) }

// ZoomOut decreases the zoom by one step, down to MinZoom.
func (v *Viewport) ZoomOut() { v.Zoom = v.clamp(v.Zoom - v.cfg.ZoomStep) }

// ZoomByWheel zooms one step per wheel event using natural scrolling:
// a positive deltaY zooms out, a negative one zooms in.
func (v *Viewport) ZoomByWheel(deltaY float64) {
	switch {
	case deltaY > 0:
		v.ZoomOut()
	case deltaY < 0:
		v.ZoomIn()
	}
}

// BeginDrag starts panning with the pointer at p. Calling it while already
// dragging re-anchors the drag at p.
func (v *Viewport) BeginDrag(p Point) {
	v.dragStart = p.Sub(v.Pan)
	v.Dragging = true
}

// Drag moves the pan so the content follows the pointer. It does nothing
// unless a drag is in progress.
func (v *Viewport) Drag(p Point) {
	if !v.Dragging {
		return
	}
	v.Pan = p.Sub(v.dragStart)
}

// EndDrag stops panning. It is safe to call at any time.
func (v *Viewport) EndDrag() { v.Dragging = false }

// CancelDrag is EndDrag for pointer-leave and focus-loss events.
func (v *Viewport) CancelDrag() { v.EndDrag() }

// FitToContent chooses zoom and pan so that r, grown by FitMargin, fits the
// container horizontally centered with its top at TopOffset. The content is
// never scaled above 1. The zoom limits do not apply: very large charts are
// shrunk below MinZoom so they stay fully visible.
func (v *Viewport) FitToContent(r layout.Rect, container Size) error {
	if !container.Valid() {
		return errors.New(errors.ErrCodeInvalidContainer, "container must have positive size, got %gx%g", container.Width, container.Height)
	}
	if v.cfg.TopOffset >= container.Height {
		return errors.New(errors.ErrCodeInvalidContainer, "container height %g leaves no room below top offset %g", container.Height, v.cfg.TopOffset)
	}

	content := r.Expand(v.cfg.FitMargin)
	scale := 1.0
	if w := content.Width(); w > 0 {
		scale = math.Min(scale, container.Width/w)
	}
	if h := content.Height(); h > 0 {
		scale = math.Min(scale, (container.Height-v.cfg.TopOffset)/h)
	}

	v.Zoom = scale
	v.Pan = Point{
		X: container.Width/2 - content.CenterX()*scale,
		Y: v.cfg.TopOffset - content.MinY*scale,
	}
	return nil
}

// Fit fits all visible boxes into the container. It is a no-op when no box
// is visible.
func (v *Viewport) Fit(boxes []layout.Box, container Size) error {
	r, ok := layout.Bounds(boxes)
	if !ok {
		return nil
	}
	return v.FitToContent(r, container)
}

// ToScreen maps a layout point to screen coordinates.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{X: v.Pan.X + p.X*v.Zoom, Y: v.Pan.Y + p.Y*v.Zoom}
}

// ToLayout maps a screen point back to layout coordinates.
func (v *Viewport) ToLayout(p Point) Point {
	return Point{X: (p.X - v.Pan.X) / v.Zoom, Y: (p.Y - v.Pan.Y) / v.Zoom}
}
