// Package pkg provides the core libraries for Orgchart.
//
// # Overview
//
// Orgchart lays out organization trees top-down: every position is a fixed
// size box, children sit one level below their parent and sibling subtrees
// never overlap. Branches can be expanded and collapsed, and a viewport
// controller zooms, pans and fits the visible part of the chart into a
// container. The pkg directory is organized into four areas:
//
//  1. Model - [orgtree] (tree and expansion state) and [layout] (geometry)
//  2. Interaction - [viewport] (zoom and pan) and [chart] (a tree, its
//     layout and a viewport behind one lock)
//  3. Input and output - [source] (files and MongoDB) and [render]
//     (SVG, Graphviz, PDF, PNG)
//  4. Plumbing - [pipeline], [cache], [session], [observability], [errors]
//
// # Architecture
//
// The typical data flow:
//
//	File or MongoDB collection
//	         ↓
//	    [source] package (decode, filter, link positions)
//	         ↓
//	    [orgtree] package (seed expansion, toggle)
//	         ↓
//	    [layout] package (boxes and connectors)
//	         ↓
//	    [viewport] package (zoom, pan, fit)
//	         ↓
//	    SVG/PDF/PNG/JSON output, terminal view or HTTP session
//
// # Quick Start
//
//	res, _ := source.NewFileSource("org.yaml").Fetch(ctx, source.Key{})
//
//	// Root expanded, everything else collapsed.
//	tree, _ := orgtree.Seed(res.Root)
//	tree = orgtree.Toggle(tree, "sales")
//
//	l, _ := layout.Compute(tree, layout.DefaultConfig())
//
//	vp := viewport.New(viewport.DefaultConfig())
//	_ = vp.Fit(l.Boxes, viewport.Size{Width: 1600, Height: 900})
//
//	svgData := svg.Render(l, svg.WithViewport(vp.State(), viewport.Size{Width: 1600, Height: 900}))
//
// For interactive use, [chart.View] bundles the same steps and is safe for
// concurrent use:
//
//	view := chart.New(chart.DefaultConfig())
//	_ = view.Resize(viewport.Size{Width: 1600, Height: 900})
//	_ = view.Load(ctx, res.Root) // seeds and fits
//	_, _ = view.Toggle(ctx, "sales")
//	view.Wheel(-120) // zoom in one step
//
// # Main Packages
//
// [pipeline] - source → tree → layout → render, with caching, used by the
// CLI and the HTTP server alike.
//
// [cache] - File and Redis backends for fetched trees, layouts and renders.
//
// [session] - In-memory store of interactive charts with idle expiry.
//
// [observability] - Hooks for layouts, cache lookups, fetches and
// interactions, with logging and counting implementations.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [orgtree]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/orgtree
// [layout]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/layout
// [viewport]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/viewport
// [chart]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/chart
// [chart.View]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/chart#View
// [source]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/source
// [render]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/orgchart/pkg/errors
package pkg
