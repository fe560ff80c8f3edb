package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
)

func TestPresets(t *testing.T) {
	for _, name := range append(Presets(), "") {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			require.NoError(t, err)
			assert.NoError(t, cfg.Validate())
			assert.NotEmpty(t, cfg.Tags)
		})
	}

	_, err := Preset("huge")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestDefaultConfigIsCanonical(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 200.0, cfg.Node.Width)
	assert.Equal(t, 110.0, cfg.Node.Height)
	assert.Equal(t, 14.0, cfg.Node.PaddingV)
	assert.Equal(t, 24, cfg.Node.WrapChars)
	assert.Equal(t, 4, cfg.Node.MaxLines)
	assert.Equal(t, 160.0, cfg.Lane.MinHeight)
	assert.Equal(t, 130.0, cfg.Lane.GridLeft)
	assert.Equal(t, 50.0, cfg.Lane.GridTop)
	assert.Equal(t, 2700.0, cfg.Lane.GridRight)
	assert.Equal(t, 6.0, cfg.Edge.StartGap)
	assert.Equal(t, 12.0, cfg.Edge.EndGap)
	assert.Equal(t, 10.0, cfg.Edge.BusTolerance)
	assert.Equal(t, 14.0, cfg.Edge.BusSpacing)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero node width", func(c *Config) { c.Node.Width = 0 }, "Node.Width"},
		{"negative padding", func(c *Config) { c.Node.PaddingV = -1 }, "Node.PaddingV"},
		{"grid inverted", func(c *Config) { c.Lane.GridRight = c.Lane.GridLeft }, "Lane.GridRight"},
		{"zero bus spacing", func(c *Config) { c.Edge.BusSpacing = 0 }, "Edge.BusSpacing"},
		{"min radius above radius", func(c *Config) { c.Edge.MinCornerRadius = 30 }, "Edge.MinCornerRadius"},
		{"zero max lines", func(c *Config) { c.Node.MaxLines = 0 }, "Node.MaxLines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigValidateTagSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags = cfg.Tags.Merge(flow.TagCatalog{"evil": {Source: "../../etc/passwd"}})
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.toml")
	content := `
[node]
width = 180
max_lines = 3

[edge]
bus_spacing = 20

[tags.kpis]
label = "Key Metrics"

[tags.risks]
label = "Risks"
short = "R"
width = 36
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 180.0, cfg.Node.Width)
	assert.Equal(t, 3, cfg.Node.MaxLines)
	assert.Equal(t, 110.0, cfg.Node.Height, "unset keys keep the base value")
	assert.Equal(t, 20.0, cfg.Edge.BusSpacing)
	assert.Equal(t, "Key Metrics", cfg.Tags["kpis"].Label)
	assert.Equal(t, "KPI", cfg.Tags["kpis"].Short, "tag fields merge")
	assert.Equal(t, 36.0, cfg.Tags["risks"].Width)
	assert.Contains(t, cfg.Tags, "leading-practices")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.toml")},
		{"bad toml", write("bad.toml", "[node\nwidth=")},
		{"unknown key", write("unknown.toml", "[node]\ncolour = \"red\"\n")},
		{"invalid value", write("invalid.toml", "[node]\nwidth = -5\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path, DefaultConfig())
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "code = %s", errs.GetCode(err))
		})
	}
}
