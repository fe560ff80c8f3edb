package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusAllocator(t *testing.T) {
	a := NewBusAllocator(10, 14)

	steps := []struct {
		desired float64
		want    float64
	}{
		{100, 100},
		{100, 114},
		{105, 133}, // 105 hits 100, 119 hits 114
		{200, 200},
		{91, 147}, // 91 and 105 hit 100, 119 hits 114, 133 hits 133
	}
	for _, s := range steps {
		if got := a.Allocate(s.desired); got != s.want {
			t.Fatalf("Allocate(%v) = %v, want %v", s.desired, got, s.want)
		}
	}
	assert.Equal(t, []float64{100, 114, 133, 200, 147}, a.Allocated())

	a.Reset()
	assert.Empty(t, a.Allocated())
	assert.Equal(t, 100.0, a.Allocate(100))
}

func TestBusAllocatorDegenerateSpacing(t *testing.T) {
	a := NewBusAllocator(10, 0)
	first, second := a.Allocate(50), a.Allocate(50)
	assert.Equal(t, 50.0, first)
	assert.GreaterOrEqual(t, math.Abs(second-first), 10.0)

	b := NewBusAllocator(0, 0)
	assert.Equal(t, 7.0, b.Allocate(7))
	assert.Equal(t, 7.0, b.Allocate(7), "zero tolerance never collides")
}

func TestRoute(t *testing.T) {
	cfg := DefaultConfig().Edge

	tests := []struct {
		name    string
		src     Anchor
		dst     Anchor
		want    string
		wantBus bool
	}{
		{
			name: "level",
			src:  Anchor{Left: 150, Right: 350, Y: 130},
			dst:  Anchor{Left: 1435, Right: 1635, Y: 130},
			want: "M356,130 H1423",
		},
		{
			name: "within epsilon",
			src:  Anchor{Left: 150, Right: 350, Y: 130},
			dst:  Anchor{Left: 1435, Right: 1635, Y: 133.5},
			want: "M356,130 H1423",
		},
		{
			name:    "far lane uses bus",
			src:     Anchor{Left: 150, Right: 350, Y: 130},
			dst:     Anchor{Left: 1435, Right: 1635, Y: 450},
			want:    "M356,130 H871.5 Q889.5,130 889.5,148 V432 Q889.5,450 907.5,450 H1423",
			wantBus: true,
		},
		{
			name:    "upwards",
			src:     Anchor{Left: 150, Right: 350, Y: 450},
			dst:     Anchor{Left: 1435, Right: 1635, Y: 130},
			want:    "M356,450 H871.5 Q889.5,450 889.5,432 V148 Q889.5,130 907.5,130 H1423",
			wantBus: true,
		},
		{
			name: "back edge level",
			src:  Anchor{Left: 1435, Right: 1635, Y: 130},
			dst:  Anchor{Left: 150, Right: 350, Y: 130},
			want: "M1641,130 H356",
		},
		{
			name:    "back edge with bus turns left",
			src:     Anchor{Left: 1435, Right: 1635, Y: 130},
			dst:     Anchor{Left: 150, Right: 350, Y: 450},
			want:    "M1641,130 H1016.5 Q998.5,130 998.5,148 V432 Q998.5,450 980.5,450 H356",
			wantBus: true,
		},
		{
			name:    "same column drops beside both nodes",
			src:     Anchor{Left: 150, Right: 350, Y: 130},
			dst:     Anchor{Left: 150, Right: 350, Y: 290},
			want:    "M356,130 H356 Q374,130 374,148 V272 Q374,290 356,290 H356",
			wantBus: true,
		},
		{
			name:    "short drop shrinks radius",
			src:     Anchor{Left: 0, Right: 100, Y: 100},
			dst:     Anchor{Left: 400, Right: 500, Y: 130},
			want:    "M106,100 H234 Q247,100 247,113 V117 Q247,130 260,130 H388",
			wantBus: true,
		},
		{
			name:    "tiny drop clamps radius to half",
			src:     Anchor{Left: 0, Right: 100, Y: 100},
			dst:     Anchor{Left: 400, Right: 500, Y: 110},
			want:    "M106,100 H242 Q247,100 247,105 V105 Q247,110 252,110 H388",
			wantBus: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := NewBusAllocator(cfg.BusTolerance, cfg.BusSpacing)
			p := Route(tt.src, tt.dst, alloc, cfg)
			assert.Equal(t, tt.want, p.String())

			_, usesBus := p.BusX()
			assert.Equal(t, tt.wantBus, usesBus)
			if usesBus {
				assertRunsKeepDirection(t, p)
			}
			assert.Equal(t, tt.wantBus, len(alloc.Allocated()) == 1, "allocator only used for bus routes")
		})
	}
}

func TestRouteSharedAllocator(t *testing.T) {
	cfg := DefaultConfig().Edge
	alloc := NewBusAllocator(cfg.BusTolerance, cfg.BusSpacing)

	src := Anchor{Left: 150, Right: 350, Y: 130}
	dst := Anchor{Left: 1435, Right: 1635, Y: 450}

	x1, _ := Route(src, dst, alloc, cfg).BusX()
	x2, _ := Route(src, dst, alloc, cfg).BusX()
	assert.Equal(t, 889.5, x1)
	assert.Equal(t, 889.5+14, x2)
}

func TestPathPoints(t *testing.T) {
	p := Path{
		{Op: OpMove, X: 1, Y: 2},
		{Op: OpHorz, X: 5},
		{Op: OpQuad, CX: 6, CY: 2, X: 6, Y: 3},
		{Op: OpVert, Y: 9},
	}
	assert.Equal(t, []Point{{1, 2}, {5, 2}, {6, 3}, {6, 9}}, p.Points())

	x, ok := p.BusX()
	assert.True(t, ok)
	assert.Equal(t, 6.0, x)
}

func TestPathStringRounds(t *testing.T) {
	p := Path{{Op: OpMove, X: 1.23456, Y: -0.0001}, {Op: OpHorz, X: 2.006}}
	assert.Equal(t, "M1.23,0 H2.01", p.String())
}

// assertRunsKeepDirection checks that the horizontal run into each corner
// heads the same way as the corner itself.
func assertRunsKeepDirection(t *testing.T, p Path) {
	t.Helper()
	pts := p.Points()
	if len(pts) != 6 {
		t.Fatalf("bus path has %d segments, want 6", len(pts))
	}
	lead, firstTurn := pts[1].X-pts[0].X, pts[2].X-pts[1].X
	turnOut, tail := pts[4].X-pts[3].X, pts[5].X-pts[4].X
	assert.GreaterOrEqual(t, lead*firstTurn, 0.0, "first run reverses in %s", p)
	assert.GreaterOrEqual(t, turnOut*tail, 0.0, "last run reverses in %s", p)
}
