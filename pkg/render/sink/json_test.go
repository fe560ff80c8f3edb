package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderJSONRoundTrip(t *testing.T) {
	g := testGeometry(t)

	data, err := RenderJSON(g)
	require.NoError(t, err)

	back, err := ReadJSON(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, g.Width, back.Width)
	assert.Equal(t, g.Height, back.Height)
	assert.Equal(t, g.FontSize, back.FontSize)
	assert.Equal(t, g.Anchors, back.Anchors)
	assert.Equal(t, g.Labels, back.Labels)
	require.Len(t, back.Edges, len(g.Edges))
	for i := range g.Edges {
		assert.Equal(t, g.Edges[i].D, back.Edges[i].D)
		assert.Equal(t, g.Edges[i].D, back.Edges[i].Path.String(), "segments should rebuild the path data")
	}

	assert.Equal(t, string(RenderSVG(g)), string(RenderSVG(back)), "re-rendering cached geometry should be identical")
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	assert.Error(t, err)

	g, err := ReadJSON(strings.NewReader(`{"width": 10, "height": 20}`))
	require.NoError(t, err)
	assert.NotNil(t, g.Anchors)
	assert.NotNil(t, g.Labels)
}
