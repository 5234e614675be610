// Package pipeline runs the fetch → layout → render chain shared by the CLI
// commands and the HTTP server.
//
// Each stage is cached through a [cache.Cache]. The Runner can execute the
// whole chain or any single stage:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  source.NewFileSource("org.yaml"),
//	    Formats: []string{"svg"},
//	})
//	svg := res.Artifacts["svg"]
//
//	// Layout only
//	l, hit, err := runner.Layout(ctx, tree, layout.DefaultConfig())
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/orgtree"
	"github.com/matzehuels/orgchart/pkg/source"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// =============================================================================
// Defaults
// =============================================================================

// Default container used when fitting a render without an explicit size.
const (
	DefaultWidth  = 1280.0
	DefaultHeight = 720.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Renderers.
const (
	VizChart    = "chart"    // boxes and connectors drawn directly
	VizNodelink = "nodelink" // Graphviz with pinned positions
)

var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

var ValidVizTypes = map[string]bool{
	VizChart:    true,
	VizNodelink: true,
}

// =============================================================================
// Options and results
// =============================================================================

// Options configures a full pipeline run.
type Options struct {
	Source source.Source
	Key    source.Key

	// Expansion applied after seeding. ExpandAll wins over Expand.
	ExpandAll bool
	Expand    []string

	Layout   layout.Config
	Viewport viewport.Config

	// Fit renders at Container size with the content fitted. Without it the
	// document is sized to the content.
	Fit       bool
	Container viewport.Size

	VizType  string
	Formats  []string
	Detailed bool // nodelink: title, holder and metadata in labels
	Scale    float64

	Refresh bool // bypass the tree cache
	Logger  *log.Logger
}

// ValidateAndSetDefaults fills zero values and checks the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Source == nil {
		return fmt.Errorf("source is required")
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Viewport == (viewport.Config{}) {
		o.Viewport = viewport.DefaultConfig()
	}
	if o.Container == (viewport.Size{}) {
		o.Container = viewport.Size{Width: DefaultWidth, Height: DefaultHeight}
	}
	if o.VizType == "" {
		o.VizType = VizChart
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	return o.Viewport.Validate()
}

// Result holds the output of a pipeline run.
type Result struct {
	Tree      orgtree.Tree
	Orphans   []source.Position
	Layout    layout.Layout
	Viewport  viewport.State
	Artifacts map[string][]byte

	TreeHash  string
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	BoxCount   int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	FetchHit  bool
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, dot, png, pdf, json)", format)
	}
	return nil
}

func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return fmt.Errorf("invalid viz type: %q (must be one of: chart, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Expansion
// =============================================================================

// Expand returns t with every node in ids expanded. Unknown ids are
// ignored; already expanded nodes stay expanded.
func Expand(t orgtree.Tree, ids []string) orgtree.Tree {
	for _, id := range slices.Compact(slices.Sorted(slices.Values(ids))) {
		if n := orgtree.Find(t, id); n != nil && !n.Expanded {
			t = orgtree.Toggle(t, id)
		}
	}
	return t
}
