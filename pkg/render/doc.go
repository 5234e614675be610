// Package render turns chart layouts into files.
//
// Subpackages produce SVG: [svg] paints boxes and connectors directly, and
// [nodelink] goes through Graphviz DOT with pinned node positions. ToPDF and
// ToPNG convert either output using the external rsvg-convert tool from
// librsvg.
//
//	data := svg.Render(l)
//	pdf, err := render.ToPDF(ctx, data)
//	png, err := render.ToPNG(ctx, data, 2.0) // 2x scale
//
// [svg]: github.com/matzehuels/orgchart/pkg/render/svg
// [nodelink]: github.com/matzehuels/orgchart/pkg/render/nodelink
package render
