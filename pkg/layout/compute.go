package layout

import (
	"math"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout/text"
)

// Option configures a Compute call.
type Option func(*options)

type options struct {
	measurer    text.Measurer
	measurerSet bool
}

// WithMeasurer sets the measurer used to wrap task labels.
func WithMeasurer(m text.Measurer) Option {
	return func(o *options) { o.measurer, o.measurerSet = m, true }
}

// WithoutMeasurer wraps task labels by character count only.
func WithoutMeasurer() Option {
	return func(o *options) { o.measurer, o.measurerSet = nil, true }
}

// Compute lays out doc: lane heights first, then node placement, then
// connector routing on the final anchors. Each call uses its own bus
// allocator, so Compute is safe for concurrent use and two calls on the
// same input produce identical geometry.
//
// Nodes in unknown cells and flows with unknown endpoints are left out and
// listed in Geometry.Dropped. The only error is an invalid configuration
// (or a nil document).
func Compute(doc *flow.Document, cfg Config, opts ...Option) (*Geometry, error) {
	if doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil document")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.measurerSet {
		o.measurer = text.DefaultMeasurer(cfg.Node.FontSize)
	}
	wrap := text.Wrapper{Measurer: o.measurer, Padding: cfg.Node.WrapPadding, WrapChars: cfg.Node.WrapChars}

	heights := LaneHeights(doc.Phases, doc.Lanes, doc.Nodes, cfg)
	boxes, droppedNodes := PlaceNodes(doc.Phases, doc.Lanes, doc.Nodes, heights, cfg, wrap)

	g := &Geometry{
		FontSize: cfg.Node.FontSize,
		Anchors:  make(map[string]Anchor, len(boxes)),
		Labels:   doc.Labels(),
		Dropped:  Dropped{Nodes: droppedNodes},
	}

	for _, n := range doc.Nodes {
		box, ok := boxes[n.ID]
		if !ok || box.Phase != n.Phase || box.Lane != n.Lane || box.Label != n.Label {
			continue
		}
		if _, seen := g.Anchors[n.ID]; seen {
			continue
		}
		g.Nodes = append(g.Nodes, box)
		g.Anchors[n.ID] = box.Anchor
	}

	alloc := NewBusAllocator(cfg.Edge.BusTolerance, cfg.Edge.BusSpacing)
	for _, f := range doc.Flows {
		a, okA := boxes[f.From]
		b, okB := boxes[f.To]
		if !okA || !okB {
			g.Dropped.Flows = append(g.Dropped.Flows, f)
			continue
		}
		path := Route(a.Anchor, b.Anchor, alloc, cfg.Edge)
		e := Edge{From: f.From, To: f.To, Path: path, D: path.String()}
		e.BusX, e.UsesBus = path.BusX()
		e.Back = b.Anchor.Left-cfg.Edge.EndGap < a.Anchor.Right+cfg.Edge.StartGap
		g.Edges = append(g.Edges, e)
	}

	g.Columns = columns(doc.Phases, cfg)
	g.Rows = rows(doc.Lanes, heights, cfg)

	total := 0.0
	for _, h := range heights {
		total += h
	}
	g.Grid = Rect{X: cfg.Lane.GridLeft, Y: cfg.Lane.GridTop, W: cfg.Lane.GridRight - cfg.Lane.GridLeft, H: total}
	g.Width = cfg.Lane.GridRight + cfg.Canvas.MarginRight
	g.Height = math.Max(cfg.Canvas.MinHeight, cfg.Lane.GridTop+total+cfg.Lane.GridBottom)
	return g, nil
}

func columns(phases []string, cfg Config) []Column {
	w := ColumnWidth(len(phases), cfg.Lane)
	out := make([]Column, len(phases))
	for i, name := range phases {
		x := cfg.Lane.GridLeft + float64(i)*w
		out[i] = Column{
			Name:  name,
			X:     x,
			Width: w,
			Label: TextLine{Text: name, X: x + w/2, Y: cfg.Lane.GridTop - cfg.Canvas.PhaseLabelRise, Anchor: AnchorMiddle},
		}
	}
	return out
}

// rows centers each lane's (possibly multi-line) label vertically in the
// lane, right-aligned at LaneLabelX. Lines are 16px apart, or 15px when
// there are more than two.
func rows(lanes []string, heights []float64, cfg Config) []Row {
	tops := LaneTops(heights, cfg.Lane)
	out := make([]Row, len(lanes))
	for i, name := range lanes {
		lines := text.WrapChars(name, cfg.Canvas.LaneLabelChars, cfg.Canvas.LaneLabelLines)
		gap := 16.0
		if len(lines) > 2 {
			gap = 15
		}
		center := tops[i] + heights[i]/2
		startY := center - float64(len(lines)-1)*gap/2

		label := make([]TextLine, len(lines))
		for j, s := range lines {
			label[j] = TextLine{Text: s, X: cfg.Canvas.LaneLabelX, Y: startY + float64(j)*gap, Anchor: AnchorEnd}
		}
		out[i] = Row{Name: name, Y: tops[i], Height: heights[i], Label: label}
	}
	return out
}
