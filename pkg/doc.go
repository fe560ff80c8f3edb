// Package pkg provides the core libraries for swimlane business-process
// diagrams.
//
// # Overview
//
// Swimlane lays out a flow document, made of phases (columns), lanes (rows),
// nodes and the flows between them, as a grid diagram. Lanes grow to fit their
// content, nodes stack inside their cells and connectors are routed through
// the gaps without overlapping. The pkg directory is organized into four
// areas:
//
//  1. Domain: [flow], [layout] and [notes]
//  2. Rendering: [render], [render/sink] and [render/nodelink]
//  3. Orchestration: [pipeline] and [source]
//  4. Infrastructure: [cache], [httputil], [errors] and [observability]
//
// # Architecture
//
// The typical data flow:
//
//	JSON/YAML document (file, URL or stdin)
//	         ↓
//	    [source] package (load, optional HTTP cache)
//	         ↓
//	    [layout] package (measure labels, size lanes, place nodes, route flows)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, JSON)
//
// # Quick Start
//
//	doc, _ := flow.ReadFile("process.yaml")
//	cfg, _ := layout.Preset(layout.PresetLarge)
//	g, _ := layout.Compute(doc, cfg)
//	svg := sink.RenderSVG(g, sink.WithTitle("Purchasing"))
//
// # Main Packages
//
// [flow] - The document model, JSON/YAML codecs, the tag catalog and a
// consistency check. [flow/schema] validates raw documents against a JSON
// Schema.
//
// [layout] - The layout engine: presets and TOML configuration, label
// wrapping, lane sizing, node placement and bus-based edge routing.
//
// [notes] - Per-node annotations grouped in workspaces, read from a JSON file
// or an HTTP notes service, and summarized in diagram order.
//
// [pipeline] - The complete load → layout → render pipeline with caching,
// shared by the CLI and the HTTP service.
//
// [cache] - File, Redis and null caches plus the key scheme for documents,
// layouts and artifacts.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/flow
// [flow/schema]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/flow/schema
// [layout]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/layout
// [notes]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/notes
// [render]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/pipeline
// [source]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/swimlane/pkg/observability
package pkg
