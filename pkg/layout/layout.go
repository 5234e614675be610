package layout

import (
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgtree"
)

// Layout is the computed geometry of the visible part of a tree.
type Layout struct {
	Boxes []Box  `json:"boxes"`
	Edges []Edge `json:"edges"`
}

// Box returns the box for id, if the node is visible.
func (l Layout) Box(id string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Compute lays out the visible nodes of t. Boxes and edges are emitted in
// depth-first pre-order, children left to right.
func Compute(t orgtree.Tree, cfg Config) (Layout, error) {
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	out := Layout{Boxes: []Box{}, Edges: []Edge{}}
	if t.Root == nil {
		return out, nil
	}

	e := engine{cfg: cfg, onPath: make(map[*orgtree.ExpandedNode]bool)}
	root, err := e.measure(t.Root, 0, true, true)
	if err != nil {
		return Layout{}, err
	}

	e.place(&out, root, 0, 0)
	return out, nil
}

// alwaysVisibleDepth is the deepest level whose visibility does not depend
// on the parent's flag. Collapsing any node still stops the layout at it.
const alwaysVisibleDepth = 1

type engine struct {
	cfg    Config
	onPath map[*orgtree.ExpandedNode]bool
}

// sized is a visible node with its measured subtree width. children holds
// the shown children only; it is empty when the node is collapsed.
type sized struct {
	node     *orgtree.ExpandedNode
	depth    int
	width    float64
	children []*sized
}

func (e *engine) visible(depth int, ancestorsVisible, parentExpanded bool) bool {
	return ancestorsVisible && (depth <= alwaysVisibleDepth || parentExpanded)
}

// measure walks the visible part of the subtree bottom-up once and records
// every width, so placement never re-measures. It returns nil for an
// invisible node; a collapsed node keeps NodeWidth and lays out no
// children.
func (e *engine) measure(n *orgtree.ExpandedNode, depth int, ancestorsVisible, parentExpanded bool) (*sized, error) {
	if depth > e.cfg.MaxDepth {
		return nil, errors.New(errors.ErrCodeCyclicOrTooDeep, "node %q is deeper than %d levels", n.ID, e.cfg.MaxDepth)
	}
	if e.onPath[n] {
		return nil, errors.New(errors.ErrCodeCyclicOrTooDeep, "node %q is its own ancestor", n.ID)
	}

	vis := e.visible(depth, ancestorsVisible, parentExpanded)
	if !vis {
		return nil, nil
	}

	s := &sized{node: n, depth: depth, width: e.cfg.NodeWidth}
	if !n.HasChildren() || !n.Expanded {
		return s, nil
	}

	e.onPath[n] = true
	defer delete(e.onPath, n)

	total := 0.0
	for _, c := range n.Children {
		cs, err := e.measure(c, depth+1, vis, n.Expanded)
		if err != nil {
			return nil, err
		}
		if cs == nil {
			continue
		}
		if len(s.children) > 0 {
			total += e.cfg.Gap
		}
		total += cs.width
		s.children = append(s.children, cs)
	}
	if total > s.width {
		s.width = total
	}
	return s, nil
}

// place emits the box for s centered at centerX with its top at topY, then
// spreads the children symmetrically beneath it.
func (e *engine) place(out *Layout, s *sized, centerX, topY float64) {
	n := s.node
	b := Box{
		ID:           n.ID,
		Label:        n.Label(),
		X:            centerX,
		Y:            topY,
		Width:        e.cfg.NodeWidth,
		Height:       e.cfg.NodeHeight,
		Visible:      true,
		HasChildren:  n.HasChildren(),
		Expanded:     n.Expanded,
		Depth:        s.depth,
		SubtreeWidth: s.width,
	}
	if n.Source != nil {
		b.Title, b.Holder = n.Source.Title, n.Source.Holder
	}
	out.Boxes = append(out.Boxes, b)
	if len(s.children) == 0 {
		return
	}

	total := e.cfg.Gap * float64(len(s.children)-1)
	for _, c := range s.children {
		total += c.width
	}

	childTop := topY + e.cfg.LevelSpacing
	x := centerX - total/2 + s.children[0].width/2
	for i, c := range s.children {
		if i > 0 {
			x += s.children[i-1].width/2 + e.cfg.Gap + c.width/2
		}
		out.Edges = append(out.Edges, Edge{
			ID:      EdgeID(n.ID, c.node.ID),
			From:    n.ID,
			To:      c.node.ID,
			SourceX: centerX,
			SourceY: topY + e.cfg.NodeHeight,
			TargetX: x,
			TargetY: childTop,
		})
		e.place(out, c, x, childTop)
	}
}
