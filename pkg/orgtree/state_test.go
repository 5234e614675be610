package orgtree

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// sample builds R → (A → (A1, A2), B).
func sample() *Node {
	return &Node{ID: "R", Children: []*Node{
		{ID: "A", Children: []*Node{{ID: "A1"}, {ID: "A2"}}},
		{ID: "B"},
	}}
}

func mustSeed(t *testing.T, raw *Node) Tree {
	t.Helper()
	tree, err := Seed(raw)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return tree
}

func TestSeed(t *testing.T) {
	tree := mustSeed(t, sample())

	tests := []struct {
		id           string
		wantDepth    int
		wantExpanded bool
	}{
		{"R", 0, true},
		{"A", 1, false},
		{"B", 1, false},
		{"A1", 2, false},
		{"A2", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := Find(tree, tt.id)
			if n == nil {
				t.Fatalf("node %s not found", tt.id)
			}
			if n.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", n.Depth, tt.wantDepth)
			}
			if n.Expanded != tt.wantExpanded {
				t.Errorf("Expanded = %v, want %v", n.Expanded, tt.wantExpanded)
			}
			if n.Source == nil || n.Source.ID != tt.id {
				t.Errorf("Source not linked to payload")
			}
		})
	}
}

func TestSeedEmpty(t *testing.T) {
	tree, err := Seed(nil)
	if err != nil {
		t.Fatalf("Seed(nil) error = %v", err)
	}
	if !tree.Empty() {
		t.Error("Seed(nil) should produce the empty tree")
	}
	if Count(tree) != 0 {
		t.Errorf("Count = %d, want 0", Count(tree))
	}
}

func TestSeedSkipsNilChildren(t *testing.T) {
	tree := mustSeed(t, &Node{ID: "R", Children: []*Node{nil, {ID: "A"}, nil}})
	if got := len(tree.Root.Children); got != 1 {
		t.Errorf("children = %d, want 1", got)
	}
}

func TestSeedCycle(t *testing.T) {
	a := &Node{ID: "A"}
	b := &Node{ID: "B", Children: []*Node{a}}
	a.Children = []*Node{b}

	_, err := Seed(&Node{ID: "R", Children: []*Node{a}})
	if !errors.Is(err, errors.ErrCodeCyclicOrTooDeep) {
		t.Fatalf("Seed(cycle) error = %v, want %s", err, errors.ErrCodeCyclicOrTooDeep)
	}
}

func TestSeedTooDeep(t *testing.T) {
	root := &Node{ID: "n0"}
	cur := root
	for i := 1; i <= MaxDepth+1; i++ {
		next := &Node{ID: fmt.Sprintf("n%d", i)}
		cur.Children = []*Node{next}
		cur = next
	}

	_, err := Seed(root)
	if !errors.Is(err, errors.ErrCodeCyclicOrTooDeep) {
		t.Fatalf("Seed(deep) error = %v, want %s", err, errors.ErrCodeCyclicOrTooDeep)
	}
}

func TestSeedSharedSubtreeIsNotACycle(t *testing.T) {
	shared := &Node{ID: "S"}
	_, err := Seed(&Node{ID: "R", Children: []*Node{
		{ID: "A", Children: []*Node{shared}},
		{ID: "B", Children: []*Node{shared}},
	}})
	if err != nil {
		t.Fatalf("Seed(shared) error = %v", err)
	}
}

func TestToggle(t *testing.T) {
	before := mustSeed(t, sample())
	after := Toggle(before, "A")

	if Find(before, "A").Expanded {
		t.Error("Toggle mutated its input")
	}
	if !Find(after, "A").Expanded {
		t.Error("A should be expanded after toggle")
	}
	if Find(after, "B") != Find(before, "B") {
		t.Error("untouched subtree B should be shared")
	}
	if after.Root == before.Root {
		t.Error("root on the toggle path should be copied")
	}

	back := Toggle(after, "A")
	if Find(back, "A").Expanded {
		t.Error("second toggle should collapse A again")
	}
}

func TestToggleUnknownID(t *testing.T) {
	before := mustSeed(t, sample())
	after := Toggle(before, "nope")
	if after.Root != before.Root {
		t.Error("unknown id should return the input tree")
	}
	if Toggle(Tree{}, "A").Root != nil {
		t.Error("toggle on empty tree should stay empty")
	}
}

func TestToggleFirstMatchOnly(t *testing.T) {
	tree := mustSeed(t, &Node{ID: "R", Children: []*Node{
		{ID: "dup", Children: []*Node{{ID: "x"}}},
		{ID: "dup", Children: []*Node{{ID: "y"}}},
	}})
	after := Toggle(tree, "dup")
	if !after.Root.Children[0].Expanded {
		t.Error("first duplicate should be toggled")
	}
	if after.Root.Children[1].Expanded {
		t.Error("second duplicate should be untouched")
	}
}

func TestExpandAll(t *testing.T) {
	before := mustSeed(t, sample())
	after := ExpandAll(before)

	got := ExpandedIDs(after)
	want := []string{"A", "R"}
	if !slices.Equal(got, want) {
		t.Errorf("ExpandedIDs = %v, want %v", got, want)
	}
	if Find(before, "A").Expanded {
		t.Error("ExpandAll mutated its input")
	}
	if Find(after, "A1").Expanded {
		t.Error("leaf should not be marked expanded")
	}
}

func TestCollapseDefault(t *testing.T) {
	tree := ExpandAll(mustSeed(t, sample()))
	tree = CollapseDefault(tree)

	got := ExpandedIDs(tree)
	if !slices.Equal(got, []string{"R"}) {
		t.Errorf("ExpandedIDs = %v, want [R]", got)
	}
}

func TestStructureIgnoresExpansion(t *testing.T) {
	a := mustSeed(t, sample())
	b := ExpandAll(a)
	sa, sb := Structure(a), Structure(b)
	if fmt.Sprint(sa) != fmt.Sprint(sb) {
		t.Errorf("Structure changed with expansion: %v vs %v", sa, sb)
	}
}

// genTree draws a random tree with up to 60 nodes where node i hangs below a
// random earlier node.
func genTree(t *rapid.T) *Node {
	n := rapid.IntRange(1, 60).Draw(t, "nodes")
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{ID: fmt.Sprintf("n%d", i)}
		if i > 0 {
			p := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i))
			nodes[p].Children = append(nodes[p].Children, nodes[i])
		}
	}
	return nodes[0]
}

func TestToggleIsInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := genTree(t)
		tree, err := Seed(raw)
		if err != nil {
			t.Fatalf("Seed: %v", err)
		}
		id := fmt.Sprintf("n%d", rapid.IntRange(0, Count(tree)-1).Draw(t, "target"))

		twice := Toggle(Toggle(tree, id), id)
		if !slices.Equal(ExpandedIDs(twice), ExpandedIDs(tree)) {
			t.Fatalf("toggle twice changed expansion: %v -> %v", ExpandedIDs(tree), ExpandedIDs(twice))
		}
		if Count(twice) != Count(tree) {
			t.Fatalf("toggle changed node count")
		}
	})
}

func TestCollapseDefaultMatchesSeed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := genTree(t)
		tree, err := Seed(raw)
		if err != nil {
			t.Fatalf("Seed: %v", err)
		}
		mutated := ExpandAll(tree)
		if !slices.Equal(ExpandedIDs(CollapseDefault(mutated)), ExpandedIDs(tree)) {
			t.Fatalf("CollapseDefault differs from seed")
		}
	})
}
