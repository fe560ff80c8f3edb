// Package render turns swimlane geometry into pictures.
//
// # Overview
//
// Layout (pkg/layout) produces plain geometry. The renderers in this tree
// draw it:
//
//   - [sink]: the swimlane diagram itself as SVG, PNG, PDF or JSON
//   - [nodelink]: a Graphviz overview of the flow graph, grouped by lane
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). PDF output always goes
// through this path; PNG output uses it only for the Graphviz overview,
// since the swimlane sink rasterizes natively.
//
//	svg := sink.RenderSVG(geom, sink.WithNotes(notes))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/swimlane/pkg/render/sink
// [nodelink]: github.com/matzehuels/swimlane/pkg/render/nodelink
package render
