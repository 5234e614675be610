package pipeline

import (
	"strconv"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/orgtree"
)

type hashRow struct {
	ID       string `json:"i"`
	Label    string `json:"l,omitempty"`
	Title    string `json:"t,omitempty"`
	Holder   string `json:"h,omitempty"`
	Children int    `json:"c"`
}

// TreeHash fingerprints the structure and displayed payload of t. It does
// not depend on expansion state.
func TreeHash(t orgtree.Tree) string {
	var rows []hashRow
	orgtree.Walk(t, func(n *orgtree.ExpandedNode) bool {
		row := hashRow{ID: n.ID, Label: n.Label(), Children: len(n.Children)}
		if n.Source != nil {
			row.Title, row.Holder = n.Source.Title, n.Source.Holder
		}
		rows = append(rows, row)
		return true
	})
	h, _ := cache.HashJSON(rows)
	return h
}

// ExpansionSignature lists the pre-order positions of expanded nodes. Unlike
// ids, positions stay unambiguous when ids repeat.
func ExpansionSignature(t orgtree.Tree) []string {
	var sig []string
	i := 0
	orgtree.Walk(t, func(n *orgtree.ExpandedNode) bool {
		if n.Expanded && n.HasChildren() {
			sig = append(sig, strconv.Itoa(i))
		}
		i++
		return true
	})
	return sig
}
