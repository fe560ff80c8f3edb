package sink

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/swimlane/pkg/render"
)

func TestRenderPDF(t *testing.T) {
	if !render.Available() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(context.Background(), testGeometry(t), WithPDFSVGOptions(WithTitle("Procure")))
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", data[:min(len(data), 8)])
	}
}
