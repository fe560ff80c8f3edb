package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout/text"
)

// ColumnWidth returns the width of one phase column.
func ColumnWidth(phaseCount int, cfg LaneConfig) float64 {
	if phaseCount <= 0 {
		return 0
	}
	return (cfg.GridRight - cfg.GridLeft) / float64(phaseCount)
}

// LaneTops returns the y of every lane's top edge given the lane heights.
func LaneTops(heights []float64, cfg LaneConfig) []float64 {
	tops := make([]float64, len(heights))
	y := cfg.GridTop
	for i, h := range heights {
		tops[i] = y
		y += h
	}
	return tops
}

// PlaceNodes positions every node inside its (phase, lane) cell. Siblings
// are ordered by label, then id, and stacked as a group centered in the
// lane. The ids of nodes with an unknown phase or lane are returned in
// dropped. When ids repeat, the first node keeps the id and later ones are
// dropped too; they still occupy their slot in the stack so lane heights
// and placement agree.
func PlaceNodes(phases, lanes []string, nodes []flow.Node, laneHeights []float64, cfg Config, wrap text.Wrapper) (map[string]NodeBox, []string) {
	phaseIdx, laneIdx := indexOf(phases), indexOf(lanes)
	colWidth := ColumnWidth(len(phases), cfg.Lane)
	tops := LaneTops(laneHeights, cfg.Lane)

	cells := make(map[cellKey][]int)
	var dropped []string
	for i, n := range nodes {
		_, okP := phaseIdx[n.Phase]
		li, okL := laneIdx[n.Lane]
		if !okP || !okL || li >= len(laneHeights) {
			dropped = append(dropped, n.ID)
			continue
		}
		k := cellKey{n.Phase, n.Lane}
		cells[k] = append(cells[k], i)
	}

	// Iterate cells in a fixed order so duplicate-id resolution does not
	// depend on map iteration.
	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b cellKey) int {
		if c := cmp.Compare(phaseIdx[a.phase], phaseIdx[b.phase]); c != 0 {
			return c
		}
		return cmp.Compare(laneIdx[a.lane], laneIdx[b.lane])
	})

	placed := make(map[int]NodeBox, len(nodes))
	for _, k := range keys {
		siblings := cells[k]
		slices.SortStableFunc(siblings, func(a, b int) int {
			if c := cmp.Compare(nodes[a].Label, nodes[b].Label); c != 0 {
				return c
			}
			return cmp.Compare(nodes[a].ID, nodes[b].ID)
		})

		pi, li := phaseIdx[k.phase], laneIdx[k.lane]
		cellX := cfg.Lane.GridLeft + float64(pi)*colWidth + cfg.Node.Inset
		stackTop := tops[li] + (laneHeights[li]-CellHeight(len(siblings), cfg.Node))/2

		for order, idx := range siblings {
			y := stackTop + cfg.Node.PaddingV + float64(order)*(cfg.Node.Height+cfg.Node.PaddingV)
			placed[idx] = placeNode(nodes[idx], Rect{X: cellX, Y: y, W: cfg.Node.Width, H: cfg.Node.Height}, order, cfg, wrap)
		}
	}

	// Resolve ids in input order: first occurrence wins.
	boxes := make(map[string]NodeBox, len(placed))
	for i, n := range nodes {
		box, ok := placed[i]
		if !ok {
			continue
		}
		if _, dup := boxes[n.ID]; dup {
			dropped = append(dropped, n.ID)
			continue
		}
		boxes[n.ID] = box
	}
	return boxes, dropped
}

func placeNode(n flow.Node, slot Rect, order int, cfg Config, wrap text.Wrapper) NodeBox {
	box := NodeBox{
		ID:        n.ID,
		Label:     n.Label,
		Kind:      n.Kind,
		Phase:     n.Phase,
		Lane:      n.Lane,
		Slot:      slot,
		Tags:      n.Tags,
		Highlight: n.Highlight,
		Order:     order,
	}
	cy := slot.Y + slot.H/2
	sh := cfg.Shape

	switch n.Kind {
	case flow.KindEvent:
		r := sh.EventRadius
		cx := slot.X + r
		box.Shape = Rect{X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r}
		box.Lines = []TextLine{{Text: n.Label, X: cx + r + sh.LabelGap, Y: cy + sh.LabelBaseline, Anchor: AnchorStart}}
	case flow.KindGateway:
		half := sh.GatewaySize / 2
		cx := slot.X + half
		box.Shape = Rect{X: cx - half, Y: cy - half, W: sh.GatewaySize, H: sh.GatewaySize}
		box.Lines = []TextLine{{Text: n.Label, X: cx + half + sh.LabelGap, Y: cy + sh.LabelBaseline, Anchor: AnchorStart}}
	default:
		box.Kind = flow.KindTask
		box.Shape = slot
		box.Lines = taskLines(n.Label, slot, cfg.Node, wrap)
		box.Chips = chips(n.Tags, slot, sh, cfg.Tags)
	}

	box.Anchor = Anchor{Left: box.Shape.X, Right: box.Shape.Right(), Y: cy, Kind: box.Kind}
	if box.Kind == flow.KindTask {
		box.NoteAt = Point{X: slot.Right() - sh.NoteInset, Y: slot.Y + sh.NoteInset}
	} else {
		box.NoteAt = Point{X: box.Shape.Right(), Y: box.Shape.Y}
	}
	return box
}

// taskLines wraps the label and centers the block of lines in the box.
func taskLines(label string, slot Rect, cfg NodeConfig, wrap text.Wrapper) []TextLine {
	wrapped := wrap.Wrap(label, slot.W, cfg.MaxLines)
	if len(wrapped) == 0 {
		return nil
	}
	firstY := slot.Y + slot.H/2 - float64(len(wrapped)-1)*cfg.LineGap/2
	lines := make([]TextLine, len(wrapped))
	for i, s := range wrapped {
		lines[i] = TextLine{
			Text:   s,
			X:      slot.X + slot.W/2,
			Y:      firstY + float64(i)*cfg.LineGap + cfg.Baseline,
			Anchor: AnchorMiddle,
		}
	}
	return lines
}

// chips lays tag badges left to right along the bottom of the box.
func chips(tags []string, slot Rect, sh ShapeConfig, catalog flow.TagCatalog) []Chip {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Chip, 0, len(tags))
	x := slot.X + sh.ChipPadLeft
	y := slot.Bottom() - sh.ChipHeight - sh.ChipPadBottom
	for _, tag := range tags {
		info, _ := catalog.Lookup(tag)
		out = append(out, Chip{
			Tag:   tag,
			Label: info.Label,
			Short: info.Short,
			Rect:  Rect{X: x, Y: y, W: info.Width, H: sh.ChipHeight},
		})
		x += info.Width + sh.ChipSpacing
	}
	return out
}
