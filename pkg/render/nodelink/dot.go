package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/render"
)

// Options configures overview rendering.
type Options struct {
	// Detailed adds the phase and tag short codes to node labels.
	// When false, only the node label is shown.
	Detailed bool

	// Tags resolves tag short codes. Nil means flow.DefaultTags.
	Tags flow.TagCatalog
}

// ToDOT converts a document to Graphviz DOT format. Lanes become clusters
// in lane order; nodes within a lane are listed in phase order.
func ToDOT(doc *flow.Document, opts Options) string {
	if opts.Tags == nil {
		opts.Tags = flow.DefaultTags()
	}
	phases, lanes := doc.PhaseIndex(), doc.LaneIndex()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	byLane := make([][]flow.Node, len(doc.Lanes))
	known := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if known[n.ID] {
			continue
		}
		li, okL := lanes[n.Lane]
		_, okP := phases[n.Phase]
		if !okL || !okP || li >= len(byLane) {
			continue
		}
		known[n.ID] = true
		byLane[li] = append(byLane[li], n)
	}

	for li, nodes := range byLane {
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", li)
		fmt.Fprintf(&buf, "    label=%q;\n", doc.Lanes[li])
		buf.WriteString("    style=\"rounded,filled\";\n")
		buf.WriteString("    fillcolor=\"#f5f7fa\";\n")
		buf.WriteString("    color=\"#c8d0da\";\n")
		slices.SortStableFunc(nodes, func(a, b flow.Node) int {
			return cmp.Compare(phases[a.Phase], phases[b.Phase])
		})
		for _, n := range nodes {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, opts)), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, f := range doc.Flows {
		if !known[f.From] || !known[f.To] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", f.From, f.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, opts Options) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !opts.Detailed {
		return label
	}

	parts := []string{label, "phase: " + n.Phase}
	if len(n.Tags) > 0 {
		codes := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			info, _ := opts.Tags.Lookup(t)
			codes[i] = info.Short
		}
		parts = append(parts, "tags: "+strings.Join(codes, " "))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n flow.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case flow.KindEvent:
		attrs = append(attrs, "shape=circle", "style=filled", "fillcolor=\"#e8f5e9\"", "fixedsize=false")
	case flow.KindGateway:
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=\"#fff8e1\"")
	}
	if n.Highlight {
		attrs = append(attrs, "penwidth=3", "color=\"#f59e0b\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
