package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout"
)

const (
	minimapGap   = 20.0
	taskRadius   = 6.0
	chipRadius   = 4.0
	chipFontSize = 11.0
	noteRadius   = 7.0
	arrowID      = "swimlane-arrow"
)

const interactionCSS = `
    .node { cursor: pointer; }
    .node .shape { transition: stroke-width 0.2s ease; }
    .node:hover .shape, .node.selected .shape { stroke-width: 3; }
    .node.highlight .shape { stroke-width: 3; }
    .edge { fill: none; }
    .edge.dim { opacity: 0.25; }
    .chip { cursor: pointer; }
    .chip:hover rect { filter: brightness(0.92); }`

const interactionJS = `
    function emit(name, detail) {
      document.dispatchEvent(new CustomEvent(name, { detail: detail }));
    }
    function select(id) {
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('selected', n.dataset.id === id));
      document.querySelectorAll('.edge').forEach(e => e.classList.toggle('dim', id !== null && e.dataset.from !== id && e.dataset.to !== id));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('click', () => {
        const id = el.dataset.id;
        const tags = el.dataset.tags ? el.dataset.tags.split(' ') : [];
        select(id);
        emit('swimlane:select', { id: id, label: window.swimlaneLayout.labels[id], tags: tags });
      });
    });
    document.querySelectorAll('.chip').forEach(el => {
      el.addEventListener('click', ev => {
        ev.stopPropagation();
        const id = el.closest('.node').dataset.id;
        emit('swimlane:tag', { id: id, label: window.swimlaneLayout.labels[id], tag: el.dataset.tag });
      });
    });
    document.addEventListener('keydown', ev => { if (ev.key === 'Escape') select(null); });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme   Theme
	notes   map[string]string
	minimap float64
	title   string
	script  bool
}

// WithTheme sets the colors.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithNotes draws a badge on every node that has a non-empty note. The note
// text becomes the badge's tooltip.
func WithNotes(notes map[string]string) SVGOption {
	return func(r *svgRenderer) { r.notes = notes }
}

// WithMinimap appends an overview of the whole diagram, scaled by scale,
// below it. Scales outside (0, 1] disable the minimap.
func WithMinimap(scale float64) SVGOption {
	return func(r *svgRenderer) {
		if scale > 0 && scale <= 1 {
			r.minimap = scale
		}
	}
}

// WithTitle sets the document title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithoutScript omits the interaction script and styles, for static
// conversions.
func WithoutScript() SVGOption { return func(r *svgRenderer) { r.script = false } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: DefaultTheme(), script: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the geometry as a standalone SVG document.
func RenderSVG(g *layout.Geometry, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	height := g.Height
	if r.minimap > 0 {
		height += minimapGap + g.Height*r.minimap
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="sans-serif">`+"\n",
		num(g.Width), num(height), num(g.Width), num(height))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(g.Width), num(height), r.theme.Background)

	buf.WriteString(`  <g id="diagram">` + "\n")
	r.renderGrid(&buf, g)
	r.renderEdges(&buf, g.Edges)
	for _, n := range g.Nodes {
		r.renderNode(&buf, g.FontSize, n)
	}
	buf.WriteString("  </g>\n")

	if r.minimap > 0 {
		r.renderMinimap(&buf, g)
	}
	if r.script {
		renderInteraction(&buf, g)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">`+"\n", arrowID)
	fmt.Fprintf(buf, `      <path d="M0,0 L10,5 L0,10 z" fill="%s"/>`+"\n", r.theme.Edge)
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

// =============================================================================
// Grid
// =============================================================================

func (r *svgRenderer) renderGrid(buf *bytes.Buffer, g *layout.Geometry) {
	buf.WriteString(`    <g class="grid">` + "\n")
	for i, row := range g.Rows {
		fmt.Fprintf(buf, `      <rect class="lane" x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(g.Grid.X), num(row.Y), num(g.Grid.W), num(row.Height), r.theme.LaneFill[i%2])
		if i > 0 {
			fmt.Fprintf(buf, `      <line class="lane-sep" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
				num(g.Grid.X), num(row.Y), num(g.Grid.Right()), num(row.Y), r.theme.GridLine)
		}
	}
	for i, col := range g.Columns {
		if i == 0 {
			continue
		}
		fmt.Fprintf(buf, `      <line class="col-sep" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-dasharray="4 4"/>`+"\n",
			num(col.X), num(g.Grid.Y), num(col.X), num(g.Grid.Bottom()), r.theme.GridLine)
	}
	fmt.Fprintf(buf, `      <rect class="grid-border" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s"/>`+"\n",
		num(g.Grid.X), num(g.Grid.Y), num(g.Grid.W), num(g.Grid.H), r.theme.GridLine)

	for _, col := range g.Columns {
		fmt.Fprintf(buf, `      <text class="phase-label" x="%s" y="%s" text-anchor="%s" font-size="%s" font-weight="bold" fill="%s">%s</text>`+"\n",
			num(col.Label.X), num(col.Label.Y), col.Label.Anchor, num(g.FontSize), r.theme.LabelText, escapeXML(col.Label.Text))
	}
	for _, row := range g.Rows {
		if len(row.Label) == 0 {
			continue
		}
		fmt.Fprintf(buf, `      <text class="lane-label" text-anchor="%s" font-size="%s" font-weight="bold" fill="%s">`,
			row.Label[0].Anchor, num(g.FontSize), r.theme.LabelText)
		writeTspans(buf, row.Label)
		buf.WriteString("</text>\n")
	}
	buf.WriteString("    </g>\n")
}

// =============================================================================
// Edges
// =============================================================================

func (r *svgRenderer) renderEdges(buf *bytes.Buffer, edges []layout.Edge) {
	buf.WriteString(`    <g class="edges">` + "\n")
	for _, e := range edges {
		class := "edge"
		if e.Back {
			class += " back"
		}
		fmt.Fprintf(buf, `      <path class="%s" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="1.6" marker-end="url(#%s)"/>`+"\n",
			class, escapeXML(e.From), escapeXML(e.To), e.D, r.theme.Edge, arrowID)
	}
	buf.WriteString("    </g>\n")
}

// =============================================================================
// Nodes
// =============================================================================

func (r *svgRenderer) renderNode(buf *bytes.Buffer, fontSize float64, n layout.NodeBox) {
	class := "node node-" + string(n.Kind)
	stroke, width := r.theme.NodeStroke, 1.5
	if n.Highlight {
		class += " highlight"
		stroke, width = r.theme.Highlight, 3
	}
	fmt.Fprintf(buf, `    <g class="%s" id="node-%s" data-id="%s" data-kind="%s" data-tags="%s">`+"\n",
		class, escapeXML(n.ID), escapeXML(n.ID), n.Kind, escapeXML(strings.Join(n.Tags, " ")))

	s := n.Shape
	switch n.Kind {
	case flow.KindEvent:
		c := s.Center()
		fmt.Fprintf(buf, `      <circle class="shape" cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(c.X), num(c.Y), num(s.W/2), r.theme.EventFill, stroke, num(width))
	case flow.KindGateway:
		c := s.Center()
		fmt.Fprintf(buf, `      <polygon class="shape" points="%s,%s %s,%s %s,%s %s,%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(c.X), num(s.Y), num(s.Right()), num(c.Y), num(c.X), num(s.Bottom()), num(s.X), num(c.Y),
			r.theme.GatewayFill, stroke, num(width))
	default:
		fmt.Fprintf(buf, `      <rect class="shape" x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(s.X), num(s.Y), num(s.W), num(s.H), num(taskRadius), r.theme.NodeFill, stroke, num(width))
	}

	if len(n.Lines) > 0 {
		fmt.Fprintf(buf, `      <text class="label" text-anchor="%s" font-size="%s" fill="%s">`,
			n.Lines[0].Anchor, num(fontSize), r.theme.NodeText)
		writeTspans(buf, n.Lines)
		buf.WriteString("</text>\n")
	}

	for _, c := range n.Chips {
		fmt.Fprintf(buf, `      <g class="chip" data-tag="%s"><title>%s</title>`, escapeXML(c.Tag), escapeXML(c.Label))
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"/>`,
			num(c.X), num(c.Y), num(c.W), num(c.H), num(chipRadius), r.theme.ChipFill)
		fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" font-size="%s" font-weight="bold" fill="%s">%s</text></g>`+"\n",
			num(c.X+c.W/2), num(c.Y+c.H/2+chipFontSize/3), num(chipFontSize), r.theme.ChipText, escapeXML(c.Short))
	}

	if note := r.notes[n.ID]; strings.TrimSpace(note) != "" {
		fmt.Fprintf(buf, `      <g class="note"><title>%s</title><circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/></g>`+"\n",
			escapeXML(note), num(n.NoteAt.X), num(n.NoteAt.Y), num(noteRadius), r.theme.NoteFill, r.theme.NodeStroke)
	}
	buf.WriteString("    </g>\n")
}

func writeTspans(buf *bytes.Buffer, lines []layout.TextLine) {
	for _, l := range lines {
		fmt.Fprintf(buf, `<tspan x="%s" y="%s">%s</tspan>`, num(l.X), num(l.Y), escapeXML(l.Text))
	}
}

// =============================================================================
// Minimap and interaction
// =============================================================================

func (r *svgRenderer) renderMinimap(buf *bytes.Buffer, g *layout.Geometry) {
	top := g.Height + minimapGap
	fmt.Fprintf(buf, `  <g class="minimap" transform="translate(0,%s) scale(%s)">`+"\n", num(top), num(r.minimap))
	fmt.Fprintf(buf, `    <rect x="0" y="0" width="%s" height="%s" fill="%s" stroke="%s"/>`+"\n",
		num(g.Width), num(g.Height), r.theme.Background, r.theme.GridLine)
	buf.WriteString(`    <use href="#diagram"/>` + "\n")
	buf.WriteString("  </g>\n")
}

type layoutTable struct {
	Anchors map[string]layout.Anchor `json:"anchors"`
	Labels  map[string]string        `json:"labels"`
}

func renderInteraction(buf *bytes.Buffer, g *layout.Geometry) {
	table, err := json.Marshal(layoutTable{Anchors: g.Anchors, Labels: g.Labels})
	if err != nil {
		table = []byte(`{"anchors":{},"labels":{}}`)
	}
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", interactionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[\n    window.swimlaneLayout = %s;%s\n  ]]></script>\n", table, interactionJS)
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
