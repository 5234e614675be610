package layout

import "math"

// Box is the placed rectangle of one visible node.
// X is the horizontal center, Y the top edge.
type Box struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Title       string  `json:"title,omitempty"`
	Holder      string  `json:"holder,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Visible     bool    `json:"visible"`
	HasChildren bool    `json:"has_children"`
	Expanded    bool    `json:"expanded"`
	Depth       int     `json:"depth"`

	// SubtreeWidth is the horizontal span reserved for the node and its
	// shown descendants.
	SubtreeWidth float64 `json:"subtree_width"`
}

// Left returns the x coordinate of the left edge.
func (b Box) Left() float64 { return b.X - b.Width/2 }

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width/2 }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// CenterY returns the vertical center point of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Edge connects a parent box to one of its visible children.
type Edge struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	SourceX float64 `json:"source_x"`
	SourceY float64 `json:"source_y"`
	TargetX float64 `json:"target_x"`
	TargetY float64 `json:"target_y"`
}

// EdgeID returns the identifier of the connector from parent to child.
func EdgeID(from, to string) string { return from + "->" + to }

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return (r.MinY + r.MaxY) / 2 }

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		MinX: r.MinX - margin,
		MaxX: r.MaxX + margin,
		MinY: r.MinY - margin,
		MaxY: r.MaxY + margin,
	}
}

// Bounds returns the smallest rectangle enclosing every visible box.
// ok is false when boxes contains no visible box; the rectangle is then
// meaningless and callers must not divide by its size.
func Bounds(boxes []Box) (r Rect, ok bool) {
	r = Rect{
		MinX: math.Inf(1),
		MaxX: math.Inf(-1),
		MinY: math.Inf(1),
		MaxY: math.Inf(-1),
	}
	for _, b := range boxes {
		if !b.Visible {
			continue
		}
		ok = true
		r.MinX = math.Min(r.MinX, b.Left())
		r.MaxX = math.Max(r.MaxX, b.Right())
		r.MinY = math.Min(r.MinY, b.Y)
		r.MaxY = math.Max(r.MaxY, b.Bottom())
	}
	if !ok {
		return Rect{}, false
	}
	return r, true
}
