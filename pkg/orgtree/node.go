package orgtree

// Node is a position in the organization as delivered by a data source.
// Children are ordered; insertion order is sibling order.
type Node struct {
	ID       string         `json:"id" yaml:"id" toml:"id"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`    // Display label (defaults to ID)
	Title    string         `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`    // Position title, e.g. "VP Sales"
	Holder   string         `json:"holder,omitempty" yaml:"holder,omitempty" toml:"holder,omitempty"` // Person currently holding the position
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// ExpandedNode is a Node augmented with its depth and expansion state.
type ExpandedNode struct {
	ID       string
	Depth    int
	Expanded bool
	Children []*ExpandedNode

	// Source is the raw payload this node was seeded from. It is shared
	// between trees and never modified by this package.
	Source *Node
}

// HasChildren reports whether the node has at least one child.
func (n *ExpandedNode) HasChildren() bool { return len(n.Children) > 0 }

// Label returns the display label of the underlying payload, or the ID when
// the node was built without one.
func (n *ExpandedNode) Label() string {
	if n.Source != nil {
		return n.Source.DisplayLabel()
	}
	return n.ID
}

// Tree is a seeded position hierarchy. The zero value is the empty tree.
type Tree struct {
	Root *ExpandedNode
}

// Empty reports whether the tree has no root.
func (t Tree) Empty() bool { return t.Root == nil }
