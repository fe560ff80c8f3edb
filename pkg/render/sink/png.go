package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/layout/text"
)

const arrowSize = 8.0

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	theme Theme
	notes map[string]string
	scale float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGTheme sets the colors.
func WithPNGTheme(t Theme) PNGOption {
	return func(r *pngRenderer) { r.theme = t }
}

// WithPNGNotes draws note badges like [WithNotes].
func WithPNGNotes(notes map[string]string) PNGOption {
	return func(r *pngRenderer) { r.notes = notes }
}

// RenderPNG rasterizes the geometry. Unlike PDF export it needs no external
// tools: text is drawn with the same Go Regular face used for measuring.
func RenderPNG(g *layout.Geometry, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{theme: DefaultTheme(), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	labelFace, err := text.NewFace(g.FontSize * r.scale)
	if err != nil {
		return nil, fmt.Errorf("label font: %w", err)
	}
	defer labelFace.Close()
	chipFace, err := text.NewFace(chipFontSize * r.scale)
	if err != nil {
		return nil, fmt.Errorf("chip font: %w", err)
	}
	defer chipFace.Close()

	w := int(math.Ceil(g.Width * r.scale))
	h := int(math.Ceil(g.Height * r.scale))
	dc := gg.NewContext(w, h)
	p := painter{dc: dc, s: r.scale, theme: r.theme}

	dc.SetHexColor(r.theme.Background)
	dc.Clear()

	p.grid(g, labelFace)
	for _, e := range g.Edges {
		p.edge(e)
	}
	for _, n := range g.Nodes {
		p.node(n, labelFace, chipFace, r.notes[n.ID])
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// painter draws in geometry coordinates, scaling every position itself so
// text anchoring is computed on the scaled face.
type painter struct {
	dc    *gg.Context
	s     float64
	theme Theme
}

func (p painter) grid(g *layout.Geometry, face font.Face) {
	dc, s := p.dc, p.s
	for i, row := range g.Rows {
		dc.SetHexColor(p.theme.LaneFill[i%2])
		dc.DrawRectangle(g.Grid.X*s, row.Y*s, g.Grid.W*s, row.Height*s)
		dc.Fill()
	}

	dc.SetHexColor(p.theme.GridLine)
	dc.SetLineWidth(s)
	for i, row := range g.Rows {
		if i == 0 {
			continue
		}
		dc.DrawLine(g.Grid.X*s, row.Y*s, g.Grid.Right()*s, row.Y*s)
		dc.Stroke()
	}
	dc.SetDash(4*s, 4*s)
	for i, col := range g.Columns {
		if i == 0 {
			continue
		}
		dc.DrawLine(col.X*s, g.Grid.Y*s, col.X*s, g.Grid.Bottom()*s)
		dc.Stroke()
	}
	dc.SetDash()
	dc.DrawRectangle(g.Grid.X*s, g.Grid.Y*s, g.Grid.W*s, g.Grid.H*s)
	dc.Stroke()

	dc.SetFontFace(face)
	dc.SetHexColor(p.theme.LabelText)
	for _, col := range g.Columns {
		p.text(col.Label)
	}
	for _, row := range g.Rows {
		for _, l := range row.Label {
			p.text(l)
		}
	}
}

func (p painter) edge(e layout.Edge) {
	dc, s := p.dc, p.s
	dc.SetHexColor(p.theme.Edge)
	dc.SetLineWidth(1.6 * s)

	var cur layout.Point
	for _, seg := range e.Path {
		switch seg.Op {
		case layout.OpMove:
			cur = layout.Point{X: seg.X, Y: seg.Y}
			dc.MoveTo(cur.X*s, cur.Y*s)
		case layout.OpHorz:
			cur.X = seg.X
			dc.LineTo(cur.X*s, cur.Y*s)
		case layout.OpVert:
			cur.Y = seg.Y
			dc.LineTo(cur.X*s, cur.Y*s)
		case layout.OpQuad:
			cur = layout.Point{X: seg.X, Y: seg.Y}
			dc.QuadraticTo(seg.CX*s, seg.CY*s, cur.X*s, cur.Y*s)
		}
	}
	dc.Stroke()

	pts := e.Path.Points()
	if len(pts) < 2 {
		return
	}
	tip, prev := pts[len(pts)-1], pts[len(pts)-2]
	dir := 1.0
	if tip.X < prev.X {
		dir = -1
	}
	dc.MoveTo(tip.X*s, tip.Y*s)
	dc.LineTo((tip.X-dir*arrowSize)*s, (tip.Y-arrowSize/2)*s)
	dc.LineTo((tip.X-dir*arrowSize)*s, (tip.Y+arrowSize/2)*s)
	dc.ClosePath()
	dc.Fill()
}

func (p painter) node(n layout.NodeBox, labelFace, chipFace font.Face, note string) {
	dc, s := p.dc, p.s
	sh := n.Shape
	stroke, width := p.theme.NodeStroke, 1.5
	if n.Highlight {
		stroke, width = p.theme.Highlight, 3
	}

	fill := p.theme.NodeFill
	switch n.Kind {
	case flow.KindEvent:
		c := sh.Center()
		dc.DrawCircle(c.X*s, c.Y*s, sh.W/2*s)
		fill = p.theme.EventFill
	case flow.KindGateway:
		c := sh.Center()
		dc.MoveTo(c.X*s, sh.Y*s)
		dc.LineTo(sh.Right()*s, c.Y*s)
		dc.LineTo(c.X*s, sh.Bottom()*s)
		dc.LineTo(sh.X*s, c.Y*s)
		dc.ClosePath()
		fill = p.theme.GatewayFill
	default:
		dc.DrawRoundedRectangle(sh.X*s, sh.Y*s, sh.W*s, sh.H*s, taskRadius*s)
	}
	dc.SetHexColor(fill)
	dc.FillPreserve()
	dc.SetHexColor(stroke)
	dc.SetLineWidth(width * s)
	dc.Stroke()

	dc.SetFontFace(labelFace)
	dc.SetHexColor(p.theme.NodeText)
	for _, l := range n.Lines {
		p.text(l)
	}

	dc.SetFontFace(chipFace)
	for _, c := range n.Chips {
		dc.DrawRoundedRectangle(c.X*s, c.Y*s, c.W*s, c.H*s, chipRadius*s)
		dc.SetHexColor(p.theme.ChipFill)
		dc.Fill()
		dc.SetHexColor(p.theme.ChipText)
		dc.DrawStringAnchored(c.Short, (c.X+c.W/2)*s, (c.Y+c.H/2)*s, 0.5, 0.35)
	}

	if strings.TrimSpace(note) != "" {
		dc.DrawCircle(n.NoteAt.X*s, n.NoteAt.Y*s, noteRadius*s)
		dc.SetHexColor(p.theme.NoteFill)
		dc.FillPreserve()
		dc.SetHexColor(p.theme.NodeStroke)
		dc.SetLineWidth(s)
		dc.Stroke()
	}
}

func (p painter) text(l layout.TextLine) {
	ax := 0.0
	switch l.Anchor {
	case layout.AnchorMiddle:
		ax = 0.5
	case layout.AnchorEnd:
		ax = 1
	}
	p.dc.DrawStringAnchored(l.Text, l.X*p.s, l.Y*p.s, ax, 0)
}
