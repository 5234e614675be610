// Package layout computes box positions and connector lines for an org chart.
//
// [Compute] is a pure function of an [orgtree.Tree] and a [Config]: it
// decides which nodes are visible, measures how much horizontal space every
// visible subtree needs and places children centered beneath their parent.
//
// # Visibility
//
// A node at depth d is visible when all of its ancestors are visible and
// either d <= 1 or its parent is expanded. Layout stops at a collapsed
// node: it keeps a single box width and none of its children are placed.
// A freshly seeded tree therefore shows the root and its direct reports,
// and collapsing the root leaves the root alone.
//
// # Coordinates
//
// Box.X is the horizontal center of a box and Box.Y its top edge. The root
// is centered at x=0 with its top at y=0; y grows downwards by
// Config.LevelSpacing per level.
//
//	l, err := layout.Compute(tree, layout.DefaultConfig())
//	if r, ok := layout.Bounds(l.Boxes); ok {
//	    fmt.Println(r.Width(), r.Height())
//	}
//
// # Errors
//
// Trees deeper than Config.MaxDepth, or containing a node that is its own
// ancestor, fail with a CYCLIC_OR_TOO_DEEP error instead of overflowing the
// stack. An empty tree produces an empty layout.
package layout
