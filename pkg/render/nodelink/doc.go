// Package nodelink renders a swimlane document as a Graphviz overview.
//
// # Overview
//
// The swimlane sink draws the full, pixel-exact diagram. This package
// produces a compact alternative: a left-to-right directed graph where each
// lane becomes a cluster and each node keeps its kind's shape (box, circle
// or diamond). It is handy for spotting disconnected steps or cycles in
// large processes.
//
// # Usage
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels also show the phase and tag short codes
//   - Tags: catalog used for tag short codes (defaults to flow.DefaultTags)
//
// Nodes and flows the layout engine would drop (unknown phase or lane,
// dangling endpoints) are left out here too.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
