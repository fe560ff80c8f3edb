package layout

import "github.com/matzehuels/swimlane/pkg/flow"

// Point is a position in canvas coordinates (y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Anchor is where connectors attach to a node: the horizontal extremes of
// its shape at its vertical center.
type Anchor struct {
	Left  float64   `json:"left"`
	Right float64   `json:"right"`
	Y     float64   `json:"y"`
	Kind  flow.Kind `json:"kind"`
}

// Text anchors, matching SVG text-anchor values.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// TextLine is a positioned line of text. Y is the baseline.
type TextLine struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor string  `json:"anchor"`
}

// Chip is a tag badge drawn along the bottom of a task.
type Chip struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Short string `json:"short"`
	Rect
}

// NodeBox is the placed geometry of one node.
type NodeBox struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Kind  flow.Kind `json:"kind"`
	Phase string    `json:"phase"`
	Lane  string    `json:"lane"`

	// Slot is the node's allotted area within its cell. Shape is the
	// drawn outline's bounding box; for tasks they coincide.
	Slot  Rect `json:"slot"`
	Shape Rect `json:"shape"`

	Anchor Anchor     `json:"anchor"`
	Lines  []TextLine `json:"lines"`
	Chips  []Chip     `json:"chips,omitempty"`
	NoteAt Point      `json:"note_at"`

	Tags      []string `json:"tags,omitempty"`
	Highlight bool     `json:"highlight,omitempty"`

	// Order is the node's position in its cell's sibling stack.
	Order int `json:"order"`
}

// Column is a phase column.
type Column struct {
	Name  string   `json:"name"`
	X     float64  `json:"x"`
	Width float64  `json:"width"`
	Label TextLine `json:"label"`
}

// Row is a lane row.
type Row struct {
	Name   string     `json:"name"`
	Y      float64    `json:"y"`
	Height float64    `json:"height"`
	Label  []TextLine `json:"label"`
}

// Edge is a routed flow.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	D    string `json:"d"`
	Path Path   `json:"segments"`

	// BusX is the x of the vertical run; only meaningful when UsesBus.
	BusX    float64 `json:"bus_x,omitempty"`
	UsesBus bool    `json:"uses_bus"`
	Back    bool    `json:"back,omitempty"`
}

// Dropped lists the document elements that could not be placed.
type Dropped struct {
	Nodes []string    `json:"nodes,omitempty"`
	Flows []flow.Flow `json:"flows,omitempty"`
}

// Empty reports whether nothing was dropped.
func (d Dropped) Empty() bool { return len(d.Nodes) == 0 && len(d.Flows) == 0 }

// Geometry is the complete result of one layout pass.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// FontSize is the label size the text was measured with.
	FontSize float64 `json:"font_size"`

	// Grid spans the lane area: GridLeft..GridRight by GridTop..last lane.
	Grid Rect `json:"grid"`

	Columns []Column  `json:"columns"`
	Rows    []Row     `json:"rows"`
	Nodes   []NodeBox `json:"nodes"`
	Edges   []Edge    `json:"edges"`

	Anchors map[string]Anchor `json:"anchors"`
	Labels  map[string]string `json:"labels"`
	Dropped Dropped           `json:"dropped"`
}

// LaneHeights returns the row heights in lane order.
func (g *Geometry) LaneHeights() []float64 {
	out := make([]float64, len(g.Rows))
	for i, r := range g.Rows {
		out[i] = r.Height
	}
	return out
}

// Node returns the placed node with the given id.
func (g *Geometry) Node(id string) (NodeBox, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeBox{}, false
}
