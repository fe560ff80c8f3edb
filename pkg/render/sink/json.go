package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/swimlane/pkg/layout"
)

// RenderJSON serializes the geometry as indented JSON.
func RenderJSON(g *layout.Geometry) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadJSON decodes geometry written by [RenderJSON].
func ReadJSON(r io.Reader) (*layout.Geometry, error) {
	var g layout.Geometry
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	if g.Anchors == nil {
		g.Anchors = map[string]layout.Anchor{}
	}
	if g.Labels == nil {
		g.Labels = map[string]string{}
	}
	return &g, nil
}
