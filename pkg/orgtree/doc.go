// Package orgtree holds the position hierarchy rendered by the org chart and
// its per-node expand/collapse state.
//
// # Core Types
//
//   - [Node]: the raw payload supplied by a data source (id, ordered children,
//     caller-owned attributes the engine never interprets)
//   - [ExpandedNode]: a node augmented with its depth and an Expanded flag
//   - [Tree]: the seeded hierarchy; a nil root is the empty tree
//
// # Expansion State
//
// Expanded controls whether a node's children are shown, never whether the
// node itself is shown. [Seed] expands the root only, so a freshly loaded
// chart shows the root and its direct reports.
//
//	t, err := orgtree.Seed(raw)
//	t = orgtree.Toggle(t, "vp-sales")  // reveal the VP's reports
//	t = orgtree.ExpandAll(t)           // show everything
//	t = orgtree.CollapseDefault(t)     // back to the seeded state
//
// # Immutability
//
// Every operation returns a new [Tree] and leaves its input untouched.
// [Toggle] copies only the path from the root to the toggled node and shares
// every other subtree with the input, so consumers can compare node pointers
// to find what changed. The raw [Node] payload is shared by all trees seeded
// from it and must not be mutated by callers while trees are in use.
package orgtree
