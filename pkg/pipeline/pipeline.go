// Package pipeline provides the core diagram pipeline for swimlane.
//
// This package implements the complete load → layout → render pipeline that
// is used by both the CLI and the HTTP service. By centralizing this logic,
// both entry points log, cache and report dropped elements the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the flow document from a file, URL, stdin or memory
//  2. Layout: Compute the diagram geometry for a size preset
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "flows/procure-to-pay.yaml",
//	    Preset:  "large",
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	doc, err := runner.Load(ctx, src, opts)
//	geom, err := runner.Layout(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, doc, geom, opts)
//
// Nodes and flows that cannot be placed never fail a run; they are listed
// in the geometry's Dropped field and logged at warn level.
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swimlane/pkg/cache"
	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/notes"
	"github.com/matzehuels/swimlane/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Service
// =============================================================================

const (
	// DefaultPreset is the default size preset.
	DefaultPreset = layout.PresetLarge

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// View constants select what is drawn.
const (
	// ViewSwimlane is the full swimlane diagram.
	ViewSwimlane = "swimlane"
	// ViewOverview is the Graphviz node-link overview.
	ViewOverview = "overview"
)

// DefaultView is the default view.
const DefaultView = ViewSwimlane

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidViews is the set of supported views.
var ValidViews = map[string]bool{
	ViewSwimlane: true,
	ViewOverview: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for service requests.
type Options struct {
	// Load options
	Source  string `json:"source,omitempty"` // File path, http(s) URL or "-"
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	Preset     string `json:"preset,omitempty"`
	ConfigPath string `json:"-"`
	NoMeasure  bool   `json:"no_measure,omitempty"` // Wrap by character count instead of font metrics

	// Render options
	View     string   `json:"view,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Minimap  float64  `json:"minimap,omitempty"`
	Title    string   `json:"title,omitempty"`
	Static   bool     `json:"static,omitempty"`   // Omit the SVG interaction script
	Detailed bool     `json:"detailed,omitempty"` // Overview labels include phase and tags

	// Runtime options (not serialized)
	Input  source.Source  `json:"-"` // Overrides Source
	Config *layout.Config `json:"-"` // Overrides Preset and ConfigPath
	Notes  notes.Notes    `json:"-"`
	Logger *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
	// resolved caches the configuration built by ResolveConfig.
	resolved *layout.Config
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the loaded flow document.
	Document *flow.Document

	// DocumentHash is the content hash of the document.
	DocumentHash string

	// Geometry is the computed layout.
	Geometry *layout.Geometry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	FlowCount    int
	DroppedNodes int
	DroppedFlows int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the document came from cache
	LayoutHit bool // Whether the geometry came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid view: %q (must be one of: swimlane, overview)", view)
	}
	return nil
}

// ValidateViewFormats checks that every format can be produced for view.
// The overview has no geometry to export; the swimlane has no DOT source.
func ValidateViewFormats(view string, formats []string) error {
	for _, f := range formats {
		if view == ViewOverview && f == FormatJSON {
			return errs.New(errs.ErrCodeUnsupported, "format json is not available for the overview")
		}
		if view == ViewSwimlane && f == FormatDOT {
			return errs.New(errs.ErrCodeUnsupported, "format dot is only available for the overview")
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Input == nil && o.Source == "" {
		return errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Preset == "" {
		o.Preset = DefaultPreset
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	_, err := o.ResolveConfig()
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.View == "" {
		o.View = DefaultView
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Minimap < 0 || o.Minimap > 1 {
		return errs.New(errs.ErrCodeInvalidInput, "minimap scale must be within [0, 1], got %g", o.Minimap)
	}
	return ValidateViewFormats(o.View, o.Formats)
}

// ResolveConfig returns the layout configuration: Config when set,
// otherwise the preset with ConfigPath decoded over it.
func (o *Options) ResolveConfig() (layout.Config, error) {
	if o.Config != nil {
		return *o.Config, o.Config.Validate()
	}
	if o.resolved != nil {
		return *o.resolved, nil
	}
	cfg, err := layout.Preset(o.Preset)
	if err != nil {
		return layout.Config{}, err
	}
	if o.ConfigPath != "" {
		if cfg, err = layout.LoadConfig(o.ConfigPath, cfg); err != nil {
			return layout.Config{}, err
		}
	}
	o.resolved = &cfg
	return cfg, nil
}

// IsOverview reports whether the overview view is selected.
func (o *Options) IsOverview() bool {
	return o.View == ViewOverview
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(cfg layout.Config) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Preset:     o.Preset,
		ConfigHash: hashJSON(cfg),
		Measured:   !o.NoMeasure,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:  format,
		Static:  o.Static,
		Minimap: o.Minimap,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if len(o.Notes) > 0 {
		k.NotesHash = hashJSON(o.Notes)
	}
	if o.Title != "" || o.Detailed || o.IsOverview() {
		k.NotesHash = hashJSON([]any{k.NotesHash, o.Title, o.Detailed, o.View})
	}
	return k
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("unhashable:%T", v)
	}
	return cache.Hash(data)
}
