// Package svg paints a chart layout as a standalone SVG document.
//
// Without a viewport the document is sized to the content plus a margin.
// With one, the canvas has the container's size and the content is wrapped
// in a single group carrying translate(pan) scale(zoom), the same transform
// an interactive renderer applies:
//
//	data := svg.Render(l, svg.WithViewport(vp.State(), viewport.Size{Width: 1280, Height: 720}))
package svg

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// DefaultMargin surrounds the content when no viewport is given.
const DefaultMargin = 40

// Theme holds the colors used for boxes, text and connectors.
type Theme struct {
	Background string
	Fill       string
	Stroke     string
	Text       string
	Subtle     string
	Edge       string
	Badge      string
}

// DefaultTheme is a light theme.
var DefaultTheme = Theme{
	Background: "#ffffff",
	Fill:       "#f8fafc",
	Stroke:     "#334155",
	Text:       "#0f172a",
	Subtle:     "#64748b",
	Edge:       "#94a3b8",
	Badge:      "#2563eb",
}

type Option func(*renderer)

// WithViewport renders at the container size with the viewport transform.
func WithViewport(s viewport.State, container viewport.Size) Option {
	return func(r *renderer) {
		r.state = &s
		r.container = container
	}
}

func WithTheme(t Theme) Option  { return func(r *renderer) { r.theme = t } }
func WithMargin(m int) Option   { return func(r *renderer) { r.margin = m } }
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }
func WithoutBadges() Option     { return func(r *renderer) { r.badges = false } }

type renderer struct {
	state     *viewport.State
	container viewport.Size
	theme     Theme
	margin    int
	title     string
	badges    bool
}

// Render returns the SVG document for l.
func Render(l layout.Layout, opts ...Option) []byte {
	var buf bytes.Buffer
	Write(&buf, l, opts...)
	return buf.Bytes()
}

// Write streams the SVG document for l to w.
func Write(w io.Writer, l layout.Layout, opts ...Option) {
	r := renderer{theme: DefaultTheme, margin: DefaultMargin, badges: true}
	for _, opt := range opts {
		opt(&r)
	}

	width, height, transform := r.frame(l)
	canvas := svgo.New(w)
	canvas.Start(width, height)
	if r.title != "" {
		canvas.Title(r.title)
	}
	canvas.Rect(0, 0, width, height, "fill:"+r.theme.Background)

	canvas.Gtransform(transform)
	for _, e := range l.Edges {
		r.edge(canvas, e)
	}
	for _, b := range l.Boxes {
		if b.Visible {
			r.box(canvas, b)
		}
	}
	canvas.Gend()
	canvas.End()
}

// frame returns the canvas size and the content transform.
func (r *renderer) frame(l layout.Layout) (int, int, string) {
	if r.state != nil && r.container.Valid() {
		return int(math.Ceil(r.container.Width)), int(math.Ceil(r.container.Height)),
			fmt.Sprintf("translate(%g,%g) scale(%g)", r.state.Pan.X, r.state.Pan.Y, r.state.Zoom)
	}

	bounds, ok := layout.Bounds(l.Boxes)
	if !ok {
		return 2 * r.margin, 2 * r.margin, "translate(0,0)"
	}
	m := float64(r.margin)
	w := int(math.Ceil(bounds.Width() + 2*m))
	h := int(math.Ceil(bounds.Height() + 2*m))
	return w, h, fmt.Sprintf("translate(%g,%g)", m-bounds.MinX, m-bounds.MinY)
}

// edge draws an orthogonal connector: down from the parent, across at the
// midpoint between the levels, then down into the child.
func (r *renderer) edge(canvas *svgo.SVG, e layout.Edge) {
	sx, sy := round(e.SourceX), round(e.SourceY)
	tx, ty := round(e.TargetX), round(e.TargetY)
	mid := sy + (ty-sy)/2
	canvas.Polyline(
		[]int{sx, sx, tx, tx},
		[]int{sy, mid, mid, ty},
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", r.theme.Edge),
		attr("data-edge", e.ID),
	)
}

func (r *renderer) box(canvas *svgo.SVG, b layout.Box) {
	x, y := round(b.Left()), round(b.Y)
	w, h := round(b.Width), round(b.Height)
	cx := round(b.X)

	canvas.Group(`class="node"`, attr("data-id", b.ID))
	canvas.Roundrect(x, y, w, h, 12, 12,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", r.theme.Fill, r.theme.Stroke))

	textStyle := "text-anchor:middle;font-family:sans-serif;fill:"
	lines := []struct {
		text  string
		style string
	}{
		{b.Label, textStyle + r.theme.Text + ";font-size:22px;font-weight:bold"},
		{b.Title, textStyle + r.theme.Subtle + ";font-size:16px"},
		{b.Holder, textStyle + r.theme.Subtle + ";font-size:16px;font-style:italic"},
	}
	ty := y + h/2 - 18
	for _, ln := range lines {
		if ln.text == "" {
			continue
		}
		canvas.Text(cx, ty, ln.text, ln.style)
		ty += 26
	}

	if r.badges && b.HasChildren {
		sign := "+"
		if b.Expanded {
			sign = "−"
		}
		canvas.Circle(cx, y+h, 14, fmt.Sprintf("fill:%s", r.theme.Badge))
		canvas.Text(cx, y+h+6, sign, "text-anchor:middle;font-family:sans-serif;font-size:18px;fill:#ffffff")
	}
	canvas.Gend()
}

func round(v float64) int { return int(math.Round(v)) }

// attr formats an escaped XML attribute. svgo passes arguments containing
// '=' through verbatim.
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}
