// Package source loads organization trees from external systems.
//
// Sources deliver either a nested tree or a flat list of Position records
// that reference their parent by id. Build links flat records into a tree;
// records that cannot be reached from the chosen root are returned as
// orphans and never laid out.
//
//	src := source.NewFileSource("org.yaml")
//	res, err := src.Fetch(ctx, source.Key{Focus: "cto"})
//	tree, err := orgtree.Seed(res.Root)
package source

import (
	"context"
	"time"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgtree"
)

// Key selects which tree a source returns.
type Key struct {
	Scope  string `json:"scope,omitempty"`  // Organizational unit or tenant; empty means all
	Period string `json:"period,omitempty"` // Reporting period, e.g. "2024-Q3"; empty means current
	Focus  string `json:"focus,omitempty"`  // Id of the position to use as root; empty picks the top
}

// Position is one flat record of an organization.
type Position struct {
	ID       string         `json:"id" yaml:"id" toml:"id" bson:"_id"`
	ParentID string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Holder   string         `json:"holder,omitempty" yaml:"holder,omitempty" toml:"holder,omitempty" bson:"holder,omitempty"`
	Scope    string         `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty" bson:"scope,omitempty"`
	Period   string         `json:"period,omitempty" yaml:"period,omitempty" toml:"period,omitempty" bson:"period,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty"`
}

// Result is what a source returns for a Key.
type Result struct {
	Root    *orgtree.Node `json:"root"`
	Orphans []Position    `json:"orphans,omitempty"`
}

// Source fetches an organization tree.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	Fetch(ctx context.Context, key Key) (Result, error)
}

// Cacheable is implemented by remote sources whose results may be cached.
// Local sources are always read fresh.
type Cacheable interface {
	CacheTTL() time.Duration
}

// Build links positions into a tree rooted at focus, or at the first record
// without a parent when focus is empty. Records that are unreachable from
// the root, including members of parent cycles, become orphans in input
// order. An empty input yields an empty Result.
func Build(positions []Position, focus string) (Result, error) {
	if len(positions) == 0 {
		if focus != "" {
			return Result{}, errors.New(errors.ErrCodeNotFound, "focus position %q not found", focus)
		}
		return Result{}, nil
	}

	byID := make(map[string]int, len(positions))
	children := make(map[string][]int)
	for i, p := range positions {
		if err := errors.ValidateNodeID(p.ID); err != nil {
			return Result{}, err
		}
		if _, dup := byID[p.ID]; dup {
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "duplicate position id %q", p.ID)
		}
		byID[p.ID] = i
		if p.ParentID != "" {
			children[p.ParentID] = append(children[p.ParentID], i)
		}
	}

	root := -1
	if focus != "" {
		i, ok := byID[focus]
		if !ok {
			return Result{}, errors.New(errors.ErrCodeNotFound, "focus position %q not found", focus)
		}
		root = i
	} else {
		for i, p := range positions {
			if p.ParentID == "" {
				root = i
				break
			}
		}
	}

	visited := make([]bool, len(positions))
	var res Result
	if root >= 0 {
		var err error
		if res.Root, err = link(positions, children, visited, root, 0); err != nil {
			return Result{}, err
		}
	}
	for i, p := range positions {
		if !visited[i] {
			res.Orphans = append(res.Orphans, p)
		}
	}
	return res, nil
}

func link(positions []Position, children map[string][]int, visited []bool, i, depth int) (*orgtree.Node, error) {
	if depth > orgtree.MaxDepth {
		return nil, errors.New(errors.ErrCodeCyclicOrTooDeep, "position %q is deeper than %d levels", positions[i].ID, orgtree.MaxDepth)
	}
	visited[i] = true
	p := positions[i]
	n := &orgtree.Node{ID: p.ID, Label: p.Label, Title: p.Title, Holder: p.Holder, Meta: p.Meta}
	for _, c := range children[p.ID] {
		if visited[c] {
			continue // focus sits on a parent cycle
		}
		child, err := link(positions, children, visited, c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// Flatten is the inverse of Build: it lists the tree's nodes in pre-order
// with parent ids filled in.
func Flatten(root *orgtree.Node) []Position {
	var out []Position
	var rec func(n *orgtree.Node, parent string)
	rec = func(n *orgtree.Node, parent string) {
		out = append(out, Position{ID: n.ID, ParentID: parent, Label: n.Label, Title: n.Title, Holder: n.Holder, Meta: n.Meta})
		for _, c := range n.Children {
			if c != nil {
				rec(c, n.ID)
			}
		}
	}
	if root != nil {
		rec(root, "")
	}
	return out
}

// filter keeps positions matching the key's scope and period. Records that
// leave a field empty match any value.
func filter(positions []Position, key Key) []Position {
	if key.Scope == "" && key.Period == "" {
		return positions
	}
	out := positions[:0:0]
	for _, p := range positions {
		if key.Scope != "" && p.Scope != "" && p.Scope != key.Scope {
			continue
		}
		if key.Period != "" && p.Period != "" && p.Period != key.Period {
			continue
		}
		out = append(out, p)
	}
	return out
}
