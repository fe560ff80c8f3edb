package sink

import (
	"context"

	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/render"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the geometry as PDF via SVG conversion. The SVG is
// rendered without its interaction script.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, g *layout.Geometry, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svgOpts := append(append([]SVGOption(nil), r.svgOpts...), WithoutScript())
	return render.ToPDF(ctx, RenderSVG(g, svgOpts...))
}
