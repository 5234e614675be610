// Package nodelink exports a chart layout as Graphviz DOT and renders it
// with Graphviz.
//
// Nodes are pinned to the positions computed by the layout engine, so the
// Graphviz output matches the chart exactly; Graphviz only routes the
// orthogonal connectors.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external tools:
// `neato -n2 -Tpng chart.dot`.
//
// PDF and PNG conversion goes through [render.ToPDF] and [render.ToPNG],
// which require librsvg (rsvg-convert).
package nodelink
