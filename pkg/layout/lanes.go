package layout

import "github.com/matzehuels/swimlane/pkg/flow"

// cellKey identifies a (phase, lane) cell.
type cellKey struct {
	phase, lane string
}

// CellHeight is the height a cell needs to stack k nodes: padding above,
// below and between the siblings.
func CellHeight(k int, cfg NodeConfig) float64 {
	if k <= 0 {
		return 0
	}
	return float64(k)*cfg.Height + float64(k+1)*cfg.PaddingV
}

// LaneHeights returns the height of every lane, aligned with lanes. A lane
// is as tall as its fullest cell needs, and never shorter than
// cfg.Lane.MinHeight. Nodes naming an unknown phase or lane are ignored.
func LaneHeights(phases, lanes []string, nodes []flow.Node, cfg Config) []float64 {
	counts := cellCounts(phases, lanes, nodes)

	heights := make([]float64, len(lanes))
	for i, lane := range lanes {
		h := cfg.Lane.MinHeight
		for _, phase := range phases {
			if need := CellHeight(counts[cellKey{phase, lane}], cfg.Node); need > h {
				h = need
			}
		}
		heights[i] = h
	}
	return heights
}

func cellCounts(phases, lanes []string, nodes []flow.Node) map[cellKey]int {
	phaseSet, laneSet := indexOf(phases), indexOf(lanes)
	counts := make(map[cellKey]int)
	for _, n := range nodes {
		if _, ok := phaseSet[n.Phase]; !ok {
			continue
		}
		if _, ok := laneSet[n.Lane]; !ok {
			continue
		}
		counts[cellKey{n.Phase, n.Lane}]++
	}
	return counts
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}
