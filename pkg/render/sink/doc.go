// Package sink provides output format renderers for swimlane diagrams.
//
// # Overview
//
// A "sink" transforms a computed [layout.Geometry] into a final output
// format. This package provides renderers for:
//
//   - SVG: Scalable vector graphics with click interaction
//   - PNG: Raster output drawn natively with fogleman/gg
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: Geometry export for external tools and caching
//
// # SVG Output
//
// [RenderSVG] draws the lane grid, phase and lane labels, nodes by kind
// (rounded task boxes, event circles, gateway diamonds), tag chips and the
// routed connectors with arrow heads:
//
//	svg := sink.RenderSVG(geom,
//	    sink.WithNotes(notes),
//	    sink.WithMinimap(0.2),
//	)
//
// Nodes carry their id and tags as data attributes. Unless [WithoutScript]
// is given, a small script dispatches "swimlane:select" and "swimlane:tag"
// CustomEvents on the document when a node or chip is clicked, and exposes
// the anchor table as window.swimlaneLayout.
//
// # SVG Options
//
//   - [WithTheme]: Colors ([DefaultTheme] unless given)
//   - [WithNotes]: Note badges on nodes that have a note
//   - [WithMinimap]: Scaled overview band below the diagram
//   - [WithTitle]: Document title
//   - [WithoutScript]: Static output without interaction
//
// # PNG and PDF Output
//
// [RenderPNG] rasterizes the geometry directly and needs no external tools.
// [RenderPDF] renders static SVG and converts it with [render.ToPDF], which
// requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// # JSON Output
//
// [RenderJSON] writes the geometry as indented JSON; [ReadJSON] reads it
// back so a cached layout can be rendered again without recomputing it.
//
// [layout.Geometry]: github.com/matzehuels/swimlane/pkg/layout.Geometry
// [render.ToPDF]: github.com/matzehuels/swimlane/pkg/render.ToPDF
package sink
