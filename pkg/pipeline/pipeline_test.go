package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/orgtree"
	"github.com/matzehuels/orgchart/pkg/source"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

// remoteSource counts fetches and opts into caching.
type remoteSource struct {
	*source.StaticSource
	fetches int
}

func (s *remoteSource) Name() string            { return "remote" }
func (s *remoteSource) CacheTTL() time.Duration { return time.Minute }

func (s *remoteSource) Fetch(ctx context.Context, key source.Key) (source.Result, error) {
	s.fetches++
	return s.StaticSource.Fetch(ctx, key)
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func sampleRoot() *orgtree.Node {
	return &orgtree.Node{ID: "R", Children: []*orgtree.Node{
		{ID: "A", Children: []*orgtree.Node{{ID: "A1"}, {ID: "A2"}}},
		{ID: "B"},
	}}
}

func sampleTree(t *testing.T) orgtree.Tree {
	t.Helper()
	tree, err := orgtree.Seed(sampleRoot())
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"SVG", true},
		{"gif", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateFormat(tt.format); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	for _, v := range []string{"chart", "nodelink"} {
		if err := ValidateVizType(v); err != nil {
			t.Errorf("ValidateVizType(%q) = %v", v, err)
		}
	}
	if err := ValidateVizType("tower"); err == nil {
		t.Error("ValidateVizType(tower) should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: source.NewStaticSource(sampleRoot())}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Layout != layout.DefaultConfig() || opts.Viewport != viewport.DefaultConfig() {
		t.Error("configs not defaulted")
	}
	if opts.VizType != VizChart || !slices.Equal(opts.Formats, []string{"svg"}) {
		t.Errorf("VizType=%q Formats=%v", opts.VizType, opts.Formats)
	}

	if err := (&Options{}).ValidateAndSetDefaults(); err == nil {
		t.Error("missing source should fail")
	}
	bad := Options{Source: opts.Source, Layout: layout.Config{NodeWidth: -1}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid layout config should fail")
	}
}

func TestRunnerLayoutCaching(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())
	tree := sampleTree(t)
	cfg := layout.DefaultConfig()

	first, hit, err := r.Layout(ctx, tree, cfg)
	if err != nil || hit {
		t.Fatalf("first Layout: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.Layout(ctx, tree, cfg)
	if err != nil || !hit {
		t.Fatalf("second Layout: hit=%v err=%v", hit, err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached layout differs from computed one")
	}

	toggled := orgtree.Toggle(tree, "A")
	third, hit, err := r.Layout(ctx, toggled, cfg)
	if err != nil || hit {
		t.Fatalf("toggled Layout: hit=%v err=%v", hit, err)
	}
	if len(third.Boxes) != 5 {
		t.Errorf("toggled layout has %d boxes, want 5", len(third.Boxes))
	}

	wide := cfg
	wide.Gap = 200
	if _, hit, _ := r.Layout(ctx, tree, wide); hit {
		t.Error("config change should miss the cache")
	}
}

func TestRunnerLayoutError(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	cfg := layout.DefaultConfig()
	cfg.NodeWidth = 0
	if _, _, err := r.Layout(context.Background(), sampleTree(t), cfg); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestRunnerLayoutDepthLimit(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quietLogger())
	tree := orgtree.ExpandAll(sampleTree(t))

	if _, _, err := r.Layout(ctx, tree, layout.DefaultConfig()); err != nil {
		t.Fatalf("Layout with default depth: %v", err)
	}

	strict := layout.DefaultConfig()
	strict.MaxDepth = 1
	_, hit, err := r.Layout(ctx, tree, strict)
	if hit {
		t.Error("stricter depth limit reused the cached layout")
	}
	if !errors.Is(err, errors.ErrCodeCyclicOrTooDeep) {
		t.Errorf("Layout with max depth 1: err = %v, want %s", err, errors.ErrCodeCyclicOrTooDeep)
	}

	invalid := layout.DefaultConfig()
	invalid.MaxDepth = 0
	if _, hit, err := r.Layout(ctx, tree, invalid); hit || !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Layout with max depth 0: hit=%v err=%v, want %s", hit, err, errors.ErrCodeInvalidConfig)
	}
}

func TestRunnerFetchCaching(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quietLogger())

	remote := &remoteSource{StaticSource: source.NewStaticSource(sampleRoot())}
	for i, wantHit := range []bool{false, true} {
		res, hit, err := r.FetchWithCacheInfo(ctx, remote, source.Key{}, false)
		if err != nil {
			t.Fatal(err)
		}
		if hit != wantHit {
			t.Errorf("fetch %d hit = %v, want %v", i, hit, wantHit)
		}
		if res.Root == nil || res.Root.ID != "R" || len(res.Root.Children) != 2 {
			t.Errorf("fetch %d root = %+v", i, res.Root)
		}
	}
	if remote.fetches != 1 {
		t.Errorf("source fetched %d times, want 1", remote.fetches)
	}

	if _, hit, _ := r.FetchWithCacheInfo(ctx, remote, source.Key{}, true); hit || remote.fetches != 2 {
		t.Error("refresh should bypass the cache")
	}

	local := source.NewStaticSource(sampleRoot())
	for range 2 {
		if _, hit, _ := r.FetchWithCacheInfo(ctx, local, source.Key{}, false); hit {
			t.Error("local sources should never hit the cache")
		}
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, quietLogger())

	opts := Options{
		Source:    source.NewStaticSource(sampleRoot()),
		Expand:    []string{"A"},
		Fit:       true,
		Container: viewport.Size{Width: 1280, Height: 720},
		Formats:   []string{"svg", "json", "dot"},
	}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 5 || res.Stats.BoxCount != 5 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Viewport.Zoom <= 0 || res.Viewport.Zoom > 1 {
		t.Errorf("fitted zoom = %v", res.Viewport.Zoom)
	}
	if !strings.Contains(string(res.Artifacts["svg"]), "scale(") {
		t.Error("fitted SVG should carry the viewport transform")
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "digraph G {") {
		t.Error("dot artifact malformed")
	}

	var doc LayoutDocument
	if err := json.Unmarshal(res.Artifacts["json"], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(doc.Boxes) != 5 || len(doc.Edges) != 4 || doc.Viewport != res.Viewport {
		t.Errorf("json artifact = %d boxes, %d edges, viewport %+v", len(doc.Boxes), len(doc.Edges), doc.Viewport)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
}

func TestExecuteExpandAll(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{
		Source:    source.NewStaticSource(sampleRoot()),
		ExpandAll: true,
		Formats:   []string{"json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Layout.Boxes) != 5 {
		t.Errorf("ExpandAll layout has %d boxes, want 5", len(res.Layout.Boxes))
	}
}

func TestExpand(t *testing.T) {
	tree := sampleTree(t)
	got := Expand(tree, []string{"A", "A", "missing", "R"})
	if n := orgtree.Find(got, "A"); !n.Expanded {
		t.Error("A should be expanded")
	}
	if n := orgtree.Find(got, "R"); !n.Expanded {
		t.Error("R should stay expanded")
	}
	if n := orgtree.Find(tree, "A"); n.Expanded {
		t.Error("Expand mutated its input")
	}
}

func TestTreeHash(t *testing.T) {
	tree := sampleTree(t)
	if TreeHash(tree) != TreeHash(orgtree.Toggle(tree, "A")) {
		t.Error("TreeHash should ignore expansion")
	}

	relabeled := sampleRoot()
	relabeled.Children[1].Label = "Finance"
	other, _ := orgtree.Seed(relabeled)
	if TreeHash(tree) == TreeHash(other) {
		t.Error("TreeHash should change with labels")
	}
}

func TestExpansionSignature(t *testing.T) {
	tree := sampleTree(t)
	if got := ExpansionSignature(tree); !slices.Equal(got, []string{"0"}) {
		t.Errorf("seeded signature = %v, want [0]", got)
	}
	if got := ExpansionSignature(orgtree.Toggle(tree, "A")); !slices.Equal(got, []string{"0", "1"}) {
		t.Errorf("toggled signature = %v, want [0 1]", got)
	}
}
