package pipeline

import (
	"testing"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/notes"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateView(t *testing.T) {
	tests := []struct {
		view    string
		wantErr bool
	}{
		{"swimlane", false},
		{"overview", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateView(tt.view)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateView(%q) error = %v, wantErr %v", tt.view, err, tt.wantErr)
		}
	}
}

func TestValidateViewFormats(t *testing.T) {
	tests := []struct {
		name    string
		view    string
		formats []string
		wantErr bool
	}{
		{"swimlane all", ViewSwimlane, []string{"svg", "png", "pdf", "json"}, false},
		{"swimlane dot", ViewSwimlane, []string{"dot"}, true},
		{"overview all", ViewOverview, []string{"svg", "png", "pdf", "dot"}, false},
		{"overview json", ViewOverview, []string{"svg", "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewFormats(tt.view, tt.formats)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeUnsupported) {
				t.Errorf("error code = %v, want UNSUPPORTED", errs.GetCode(err))
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: "flow.yaml"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Preset != DefaultPreset {
		t.Errorf("Preset should be %q, got %q", DefaultPreset, opts.Preset)
	}
	if opts.View != DefaultView {
		t.Errorf("View should be %q, got %q", DefaultView, opts.View)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	err := opts.ValidateForLoad()
	if err == nil {
		t.Fatal("Missing source should fail")
	}
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want INVALID_INPUT", errs.GetCode(err))
	}

	opts = Options{Source: "-"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Stdin source should pass: %v", err)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown preset", Options{Source: "a.yaml", Preset: "huge"}},
		{"unknown view", Options{Source: "a.yaml", View: "tower"}},
		{"unknown format", Options{Source: "a.yaml", Formats: []string{"gif"}}},
		{"minimap above one", Options{Source: "a.yaml", Minimap: 1.5}},
		{"negative minimap", Options{Source: "a.yaml", Minimap: -0.1}},
		{"json overview", Options{Source: "a.yaml", View: ViewOverview, Formats: []string{"json"}}},
		{"missing config file", Options{Source: "a.yaml", ConfigPath: "/does/not/exist.toml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptionsIsOverview(t *testing.T) {
	opts := Options{}
	if opts.IsOverview() {
		t.Error("Empty View should not be overview")
	}

	opts.View = ViewOverview
	if !opts.IsOverview() {
		t.Error("overview View should be overview")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: "flow.yaml"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	preset, view, formats := opts.Preset, opts.View, len(opts.Formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Preset != preset || opts.View != view || len(opts.Formats) != formats {
		t.Error("Second call should not change options")
	}
}

func TestResolveConfig(t *testing.T) {
	opts := Options{Preset: layout.PresetCompact}
	cfg, err := opts.ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	want, _ := layout.Preset(layout.PresetCompact)
	if cfg.Node.Width != want.Node.Width {
		t.Errorf("Node.Width = %v, want %v", cfg.Node.Width, want.Node.Width)
	}

	// An explicit Config wins over the preset.
	custom := layout.DefaultConfig()
	custom.Node.Width = 321
	opts = Options{Preset: layout.PresetCompact, Config: &custom}
	cfg, err = opts.ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() error: %v", err)
	}
	if cfg.Node.Width != 321 {
		t.Errorf("Node.Width = %v, want 321", cfg.Node.Width)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	cfg := layout.DefaultConfig()
	opts := Options{Preset: "large"}
	a := opts.LayoutKeyOpts(cfg)
	if !a.Measured {
		t.Error("Measured should default to true")
	}

	opts.NoMeasure = true
	if opts.LayoutKeyOpts(cfg).Measured {
		t.Error("NoMeasure should clear Measured")
	}

	cfg.Node.Width++
	if b := opts.LayoutKeyOpts(cfg); b.ConfigHash == a.ConfigHash {
		t.Error("config change should change the hash")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3}
	if opts.ArtifactKeyOpts(FormatSVG).Scale != 0 {
		t.Error("scale only applies to png")
	}
	if opts.ArtifactKeyOpts(FormatPNG).Scale != 3 {
		t.Error("png key should carry the scale")
	}

	plain := opts.ArtifactKeyOpts(FormatSVG)
	opts.Notes = notes.Notes{"a": "check"}
	withNotes := opts.ArtifactKeyOpts(FormatSVG)
	if plain.NotesHash == withNotes.NotesHash {
		t.Error("notes should change the artifact key")
	}

	opts.Title = "Procure to pay"
	if opts.ArtifactKeyOpts(FormatSVG).NotesHash == withNotes.NotesHash {
		t.Error("title should change the artifact key")
	}
}
