package orgtree

import (
	"slices"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// MaxDepth is the deepest level Seed accepts. Real organizations are a few
// dozen levels at most; anything deeper is treated as malformed input.
const MaxDepth = 512

// Seed builds a Tree from a raw hierarchy, assigning depths top-down and
// expanding the root only. A nil raw node yields the empty tree.
//
// Seed returns a CYCLIC_OR_TOO_DEEP error when a node is its own ancestor or
// the hierarchy is deeper than MaxDepth.
func Seed(raw *Node) (Tree, error) {
	if raw == nil {
		return Tree{}, nil
	}
	onPath := make(map[*Node]bool)
	root, err := seed(raw, 0, onPath)
	if err != nil {
		return Tree{}, err
	}
	return Tree{Root: root}, nil
}

func seed(n *Node, depth int, onPath map[*Node]bool) (*ExpandedNode, error) {
	if depth > MaxDepth {
		return nil, errors.New(errors.ErrCodeCyclicOrTooDeep, "node %q is deeper than %d levels", n.ID, MaxDepth)
	}
	if onPath[n] {
		return nil, errors.New(errors.ErrCodeCyclicOrTooDeep, "node %q is its own ancestor", n.ID)
	}
	onPath[n] = true
	defer delete(onPath, n)

	out := &ExpandedNode{
		ID:       n.ID,
		Depth:    depth,
		Expanded: depth == 0,
		Source:   n,
	}
	if len(n.Children) > 0 {
		out.Children = make([]*ExpandedNode, 0, len(n.Children))
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		child, err := seed(c, depth+1, onPath)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// Toggle flips Expanded on the first node (depth-first, pre-order) whose ID
// matches id. Nodes on the path from the root to the match are copied; every
// other subtree is shared with t. An unknown id returns t unchanged.
func Toggle(t Tree, id string) Tree {
	if t.Root == nil {
		return t
	}
	path, ok := findPath(t.Root, id, 0)
	if !ok {
		return t
	}
	return Tree{Root: rebuildPath(t.Root, path)}
}

// findPath returns the child indices leading from n to the node with id.
func findPath(n *ExpandedNode, id string, depth int) ([]int, bool) {
	if n.ID == id {
		return nil, true
	}
	if depth >= MaxDepth {
		return nil, false
	}
	for i, c := range n.Children {
		if rest, ok := findPath(c, id, depth+1); ok {
			return append([]int{i}, rest...), true
		}
	}
	return nil, false
}

func rebuildPath(n *ExpandedNode, path []int) *ExpandedNode {
	cp := *n
	if len(path) == 0 {
		cp.Expanded = !cp.Expanded
		return &cp
	}
	cp.Children = slices.Clone(n.Children)
	cp.Children[path[0]] = rebuildPath(n.Children[path[0]], path[1:])
	return &cp
}

// ExpandAll returns a copy of t with every node that has children expanded.
func ExpandAll(t Tree) Tree {
	return mapTree(t, func(n *ExpandedNode) bool { return n.HasChildren() || n.Expanded })
}

// CollapseDefault returns a copy of t in the seeded state: only the root is
// expanded. It is equivalent to re-seeding without refetching the payload.
func CollapseDefault(t Tree) Tree {
	return mapTree(t, func(n *ExpandedNode) bool { return n.Depth == 0 })
}

// mapTree rebuilds every node of t with Expanded set by fn.
func mapTree(t Tree, fn func(*ExpandedNode) bool) Tree {
	if t.Root == nil {
		return t
	}
	var rec func(n *ExpandedNode, depth int) *ExpandedNode
	rec = func(n *ExpandedNode, depth int) *ExpandedNode {
		cp := *n
		cp.Expanded = fn(n)
		if len(n.Children) == 0 || depth >= MaxDepth {
			return &cp
		}
		cp.Children = make([]*ExpandedNode, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = rec(c, depth+1)
		}
		return &cp
	}
	return Tree{Root: rec(t.Root, 0)}
}
