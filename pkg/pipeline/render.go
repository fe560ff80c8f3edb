package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/render/nodelink"
	"github.com/matzehuels/swimlane/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. The swimlane
// view draws g; the overview draws doc through Graphviz.
func Render(ctx context.Context, doc *flow.Document, g *layout.Geometry, opts Options) (map[string][]byte, error) {
	if opts.IsOverview() {
		return renderOverview(ctx, doc, opts)
	}
	return renderSwimlane(ctx, g, opts)
}

// renderSwimlane generates swimlane outputs from a geometry.
func renderSwimlane(ctx context.Context, g *layout.Geometry, opts Options) (map[string][]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("swimlane render needs a geometry")
	}
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(g, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(g, sink.WithScale(opts.Scale), sink.WithPNGNotes(opts.Notes))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, g, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(g)
		default:
			return nil, fmt.Errorf("unsupported swimlane format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderOverview generates node-link outputs directly from the document.
func renderOverview(ctx context.Context, doc *flow.Document, opts Options) (map[string][]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("overview render needs a document")
	}
	cfg, err := opts.ResolveConfig()
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(doc, nodelink.Options{Detailed: opts.Detailed, Tags: cfg.Tags})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, fmt.Errorf("unsupported overview format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if len(opts.Notes) > 0 {
		svgOpts = append(svgOpts, sink.WithNotes(opts.Notes))
	}
	if opts.Minimap > 0 {
		svgOpts = append(svgOpts, sink.WithMinimap(opts.Minimap))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.Static {
		svgOpts = append(svgOpts, sink.WithoutScript())
	}
	return svgOpts
}

// RenderFromGeometryData renders swimlane output from serialized geometry.
// This is useful when the layout was computed elsewhere (e.g., cached).
func RenderFromGeometryData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	g, err := sink.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}
	opts.View = ViewSwimlane
	return renderSwimlane(ctx, g, opts)
}
