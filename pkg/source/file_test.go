package source

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/orgchart/pkg/errors"
)

const nestedJSON = `{
  "id": "R", "label": "CEO",
  "children": [
    {"id": "A", "children": [{"id": "A1"}, {"id": "A2"}]},
    {"id": "B"}
  ]
}`

const nestedYAML = `
id: R
label: CEO
children:
  - id: A
    children:
      - id: A1
      - id: A2
  - id: B
`

const nestedTOML = `
id = "R"
label = "CEO"

[[children]]
id = "A"

  [[children.children]]
  id = "A1"

  [[children.children]]
  id = "A2"

[[children]]
id = "B"
`

const flatYAML = `
positions:
  - id: R
    label: CEO
  - id: A
    parent_id: R
  - id: A1
    parent_id: A
  - id: A2
    parent_id: A
  - id: B
    parent_id: R
  - id: stray
    parent_id: nowhere
`

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		format      Format
		wantOrphans []string
	}{
		{"nested json", nestedJSON, FormatJSON, nil},
		{"nested yaml", nestedYAML, FormatYAML, nil},
		{"nested toml", nestedTOML, FormatTOML, nil},
		{"flat yaml", flatYAML, FormatYAML, []string{"stray"}},
	}

	want := []string{"R<", "A<R", "A1<A", "A2<A", "B<R"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			res, err := doc.Resolve(Key{})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := ids(res.Root); !slices.Equal(got, want) {
				t.Errorf("tree = %v, want %v", got, want)
			}
			if res.Root.Label != "CEO" {
				t.Errorf("root label = %q, want CEO", res.Root.Label)
			}
			if got := orphanIDs(res.Orphans); !slices.Equal(got, tt.wantOrphans) {
				t.Errorf("orphans = %v, want %v", got, tt.wantOrphans)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"bad json", `{"id":`, FormatJSON},
		{"no id", `{"label": "x"}`, FormatJSON},
		{"unknown format", `{}`, Format("xml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data), tt.format); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}

	doc, err := Decode([]byte("  \n"), FormatYAML)
	if err != nil || doc.Root != nil || doc.Positions != nil {
		t.Errorf("blank input = (%+v, %v), want empty document", doc, err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"org.json", FormatJSON, true},
		{"org.YAML", FormatYAML, true},
		{"dir/org.yml", FormatYAML, true},
		{"org.toml", FormatTOML, true},
		{"org.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err == nil) != tt.ok || got != tt.want {
				t.Errorf("FormatFromPath = (%q, %v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "org.json")
	if err := os.WriteFile(path, []byte(nestedJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewFileSource(path)
	ctx := context.Background()

	res, err := src.Fetch(ctx, Key{Focus: "A"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got, want := ids(res.Root), []string{"A<", "A1<A", "A2<A"}; !slices.Equal(got, want) {
		t.Errorf("focused tree = %v, want %v", got, want)
	}

	if _, err := src.Fetch(ctx, Key{Focus: "nobody"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown focus error = %v", err)
	}
	if _, err := NewFileSource(filepath.Join(dir, "missing.json")).Fetch(ctx, Key{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestStaticSource(t *testing.T) {
	doc, _ := Decode([]byte(nestedYAML), FormatYAML)
	src := &StaticSource{Doc: doc}
	res, err := src.Fetch(context.Background(), Key{})
	if err != nil || res.Root == nil || res.Root.ID != "R" {
		t.Errorf("Fetch = (%+v, %v)", res, err)
	}
	if src.Name() != "static" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestExampleFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join("..", "..", "examples")

	res, err := NewFileSource(filepath.Join(dir, "acme.yaml")).Fetch(ctx, Key{})
	if err != nil {
		t.Fatalf("acme.yaml: %v", err)
	}
	if got := len(Flatten(res.Root)); got != 14 {
		t.Errorf("acme.yaml has %d positions, want 14", got)
	}

	res, err = NewFileSource(filepath.Join(dir, "positions.json")).Fetch(ctx, Key{Scope: "finance", Period: "2024-Q4"})
	if err != nil {
		t.Fatalf("positions.json: %v", err)
	}
	var ids []string
	for _, p := range Flatten(res.Root) {
		ids = append(ids, p.ID)
	}
	if want := []string{"board", "ceo", "cfo", "audit"}; !slices.Equal(ids, want) {
		t.Errorf("finance 2024-Q4 = %v, want %v", ids, want)
	}
	if len(res.Orphans) != 1 || res.Orphans[0].ID != "ombuds" {
		t.Errorf("orphans = %+v, want [ombuds]", res.Orphans)
	}
}
