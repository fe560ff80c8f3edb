package layout

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Corner radius reduction: when the vertical run is shorter than
// 2*radius+cornerSlack the radius shrinks to (dy-cornerShrink)/2.
const (
	cornerSlack  = 8
	cornerShrink = 4
)

// =============================================================================
// Bus allocation
// =============================================================================

// BusAllocator hands out x coordinates for vertical connector runs so that
// no two runs in one layout pass lie within the tolerance of each other.
// A BusAllocator is not safe for concurrent use; create one per pass.
type BusAllocator struct {
	tolerance float64
	spacing   float64
	used      []float64
}

// NewBusAllocator returns an empty allocator. A non-positive spacing falls
// back to the tolerance (or 1 if that is not positive either) so that
// allocation always terminates.
func NewBusAllocator(tolerance, spacing float64) *BusAllocator {
	if spacing <= 0 {
		spacing = tolerance
	}
	if spacing <= 0 {
		spacing = 1
	}
	return &BusAllocator{tolerance: tolerance, spacing: spacing}
}

// Allocate reserves an x close to desired. If desired collides with an
// earlier allocation, desired+i*spacing is tried for i = 1, 2, ... until a
// free position is found.
func (a *BusAllocator) Allocate(desired float64) float64 {
	x := desired
	for i := 1; a.collides(x); i++ {
		x = desired + float64(i)*a.spacing
	}
	a.used = append(a.used, x)
	return x
}

func (a *BusAllocator) collides(x float64) bool {
	for _, b := range a.used {
		if math.Abs(b-x) < a.tolerance {
			return true
		}
	}
	return false
}

// Allocated returns the allocated positions in allocation order.
func (a *BusAllocator) Allocated() []float64 {
	return slices.Clone(a.used)
}

// Reset forgets all allocations.
func (a *BusAllocator) Reset() {
	a.used = a.used[:0]
}

// =============================================================================
// Paths
// =============================================================================

// Path operations, named after their SVG path commands.
const (
	OpMove = "M"
	OpHorz = "H"
	OpVert = "V"
	OpQuad = "Q"
)

// Segment is one path command in absolute coordinates. H uses only X, V
// only Y; Q uses the control point (CX, CY) and ends at (X, Y).
type Segment struct {
	Op string  `json:"op"`
	X  float64 `json:"x,omitempty"`
	Y  float64 `json:"y,omitempty"`
	CX float64 `json:"cx,omitempty"`
	CY float64 `json:"cy,omitempty"`
}

// Path is a connector outline.
type Path []Segment

// String returns the SVG path data, with coordinates rounded to two
// decimals.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Op)
		switch s.Op {
		case OpHorz:
			b.WriteString(num(s.X))
		case OpVert:
			b.WriteString(num(s.Y))
		case OpQuad:
			b.WriteString(num(s.CX) + "," + num(s.CY) + " " + num(s.X) + "," + num(s.Y))
		default:
			b.WriteString(num(s.X) + "," + num(s.Y))
		}
	}
	return b.String()
}

// Points returns the end point of every segment, resolving H and V against
// the current position.
func (p Path) Points() []Point {
	pts := make([]Point, 0, len(p))
	var cur Point
	for _, s := range p {
		switch s.Op {
		case OpHorz:
			cur.X = s.X
		case OpVert:
			cur.Y = s.Y
		default:
			cur = Point{X: s.X, Y: s.Y}
		}
		pts = append(pts, cur)
	}
	return pts
}

// BusX returns the x of the path's vertical run, if it has one.
func (p Path) BusX() (float64, bool) {
	pts := p.Points()
	for i, s := range p {
		if s.Op == OpVert {
			return pts[i].X, true
		}
	}
	return 0, false
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Routing
// =============================================================================

// Route computes the connector from src to dst. It leaves src StartGap to
// the right of its shape and stops EndGap before dst's left edge; when that
// would point backwards it ends StartGap to the right of dst instead.
// Nearly level endpoints get a single horizontal segment. Everything else
// runs horizontally to a bus x taken from alloc, vertically to the target's
// level, and horizontally into the target, with rounded corners. Corners
// never extend past either end of their horizontal run.
func Route(src, dst Anchor, alloc *BusAllocator, cfg EdgeConfig) Path {
	sx, sy := src.Right+cfg.StartGap, src.Y
	tx, ty := dst.Left-cfg.EndGap, dst.Y
	if tx < sx {
		tx = dst.Right + cfg.StartGap
	}

	if math.Abs(sy-ty) < cfg.StraightEpsilon {
		return Path{{Op: OpMove, X: sx, Y: sy}, {Op: OpHorz, X: tx}}
	}

	dy := math.Abs(ty - sy)
	r := cfg.CornerRadius
	if dy < 2*r+cornerSlack {
		r = math.Max(cfg.MinCornerRadius, (dy-cornerShrink)/2)
	}
	r = math.Min(r, dy/2)

	// Without room for both corners between sx and tx (same column), the
	// bus goes one radius beyond the rightmost end so no run doubles back.
	desired := (sx + tx) / 2
	if math.Abs(tx-sx) < 2*r {
		desired = math.Max(sx, tx) + r
	}
	mid := alloc.Allocate(desired)
	r = math.Min(r, math.Min(math.Abs(mid-sx), math.Abs(tx-mid)))

	vdir := direction(ty - sy)
	in := direction(mid - sx)
	out := direction(tx - mid)

	return Path{
		{Op: OpMove, X: sx, Y: sy},
		{Op: OpHorz, X: mid - in*r},
		{Op: OpQuad, CX: mid, CY: sy, X: mid, Y: sy + vdir*r},
		{Op: OpVert, Y: ty - vdir*r},
		{Op: OpQuad, CX: mid, CY: ty, X: mid + out*r, Y: ty},
		{Op: OpHorz, X: tx},
	}
}

func direction(d float64) float64 {
	if d < 0 {
		return -1
	}
	return 1
}
