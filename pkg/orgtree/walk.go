package orgtree

import "sort"

// Walk visits every node of t in depth-first pre-order. Returning false from
// fn skips the node's descendants.
func Walk(t Tree, fn func(n *ExpandedNode) bool) {
	if t.Root == nil {
		return
	}
	var rec func(n *ExpandedNode, depth int)
	rec = func(n *ExpandedNode, depth int) {
		if !fn(n) || depth >= MaxDepth {
			return
		}
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(t.Root, 0)
}

// Find returns the first node with the given id, or nil.
func Find(t Tree, id string) *ExpandedNode {
	var found *ExpandedNode
	Walk(t, func(n *ExpandedNode) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in t.
func Count(t Tree) int {
	count := 0
	Walk(t, func(*ExpandedNode) bool {
		count++
		return true
	})
	return count
}

// ExpandedIDs returns the sorted ids of all expanded nodes that have
// children. Two trees with the same structure and the same ExpandedIDs lay
// out identically.
func ExpandedIDs(t Tree) []string {
	var ids []string
	Walk(t, func(n *ExpandedNode) bool {
		if n.Expanded && n.HasChildren() {
			ids = append(ids, n.ID)
		}
		return true
	})
	sort.Strings(ids)
	return ids
}

// Structure flattens t into parent→children id lists in pre-order. It is a
// cheap, expansion-independent fingerprint used for cache keys.
func Structure(t Tree) [][]string {
	var out [][]string
	Walk(t, func(n *ExpandedNode) bool {
		row := make([]string, 0, len(n.Children)+1)
		row = append(row, n.ID)
		for _, c := range n.Children {
			row = append(row, c.ID)
		}
		out = append(out, row)
		return true
	})
	return out
}
