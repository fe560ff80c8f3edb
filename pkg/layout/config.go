package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
)

// validate is the shared validator instance; it caches struct metadata.
var validate = validator.New()

// Preset names.
const (
	PresetCompact  = "compact"
	PresetStandard = "standard"
	PresetLarge    = "large"
)

// NodeConfig sizes node slots and their labels.
type NodeConfig struct {
	Width       float64 `toml:"width" json:"width" validate:"gt=0"`
	Height      float64 `toml:"height" json:"height" validate:"gt=0"`
	PaddingV    float64 `toml:"padding_v" json:"padding_v" validate:"gte=0"`
	Inset       float64 `toml:"inset" json:"inset" validate:"gte=0"`
	WrapChars   int     `toml:"wrap_chars" json:"wrap_chars" validate:"gt=0"`
	WrapPadding float64 `toml:"wrap_padding" json:"wrap_padding" validate:"gte=0"`
	MaxLines    int     `toml:"max_lines" json:"max_lines" validate:"gt=0"`
	LineGap     float64 `toml:"line_gap" json:"line_gap" validate:"gt=0"`
	Baseline    float64 `toml:"baseline" json:"baseline"`
	FontSize    float64 `toml:"font_size" json:"font_size" validate:"gt=0"`
}

// LaneConfig places the grid.
type LaneConfig struct {
	MinHeight  float64 `toml:"min_height" json:"min_height" validate:"gt=0"`
	GridLeft   float64 `toml:"grid_left" json:"grid_left" validate:"gte=0"`
	GridTop    float64 `toml:"grid_top" json:"grid_top" validate:"gte=0"`
	GridRight  float64 `toml:"grid_right" json:"grid_right" validate:"gtfield=GridLeft"`
	GridBottom float64 `toml:"grid_bottom" json:"grid_bottom" validate:"gte=0"`
}

// EdgeConfig controls connector routing.
type EdgeConfig struct {
	StartGap        float64 `toml:"start_gap" json:"start_gap" validate:"gte=0"`
	EndGap          float64 `toml:"end_gap" json:"end_gap" validate:"gte=0"`
	StraightEpsilon float64 `toml:"straight_epsilon" json:"straight_epsilon" validate:"gte=0"`
	BusTolerance    float64 `toml:"bus_tolerance" json:"bus_tolerance" validate:"gte=0"`
	BusSpacing      float64 `toml:"bus_spacing" json:"bus_spacing" validate:"gt=0"`
	CornerRadius    float64 `toml:"corner_radius" json:"corner_radius" validate:"gte=0"`
	MinCornerRadius float64 `toml:"min_corner_radius" json:"min_corner_radius" validate:"gte=0,ltefield=CornerRadius"`
}

// ShapeConfig sizes events, gateways, tag chips and note badges.
type ShapeConfig struct {
	EventRadius   float64 `toml:"event_radius" json:"event_radius" validate:"gt=0"`
	GatewaySize   float64 `toml:"gateway_size" json:"gateway_size" validate:"gt=0"`
	LabelGap      float64 `toml:"label_gap" json:"label_gap" validate:"gte=0"`
	LabelBaseline float64 `toml:"label_baseline" json:"label_baseline"`
	ChipHeight    float64 `toml:"chip_height" json:"chip_height" validate:"gt=0"`
	ChipSpacing   float64 `toml:"chip_spacing" json:"chip_spacing" validate:"gte=0"`
	ChipPadLeft   float64 `toml:"chip_pad_left" json:"chip_pad_left" validate:"gte=0"`
	ChipPadBottom float64 `toml:"chip_pad_bottom" json:"chip_pad_bottom" validate:"gte=0"`
	NoteInset     float64 `toml:"note_inset" json:"note_inset" validate:"gte=0"`
}

// CanvasConfig sizes the canvas and places grid labels.
type CanvasConfig struct {
	MinHeight      float64 `toml:"min_height" json:"min_height" validate:"gte=0"`
	MarginRight    float64 `toml:"margin_right" json:"margin_right" validate:"gte=0"`
	PhaseLabelRise float64 `toml:"phase_label_rise" json:"phase_label_rise" validate:"gte=0"`
	LaneLabelX     float64 `toml:"lane_label_x" json:"lane_label_x" validate:"gte=0"`
	LaneLabelChars int     `toml:"lane_label_chars" json:"lane_label_chars" validate:"gt=0"`
	LaneLabelLines int     `toml:"lane_label_lines" json:"lane_label_lines" validate:"gt=0"`
}

// Config holds every tunable layout constant.
type Config struct {
	Node   NodeConfig      `toml:"node" json:"node"`
	Lane   LaneConfig      `toml:"lane" json:"lane"`
	Edge   EdgeConfig      `toml:"edge" json:"edge"`
	Shape  ShapeConfig     `toml:"shape" json:"shape"`
	Canvas CanvasConfig    `toml:"canvas" json:"canvas"`
	Tags   flow.TagCatalog `toml:"tags" json:"tags"`
}

// DefaultConfig returns the large preset, which carries the canonical
// constants.
func DefaultConfig() Config {
	cfg, _ := Preset(PresetLarge)
	return cfg
}

// Presets returns the available preset names.
func Presets() []string {
	return []string{PresetCompact, PresetStandard, PresetLarge}
}

// Preset returns the named size preset. The empty name selects the large
// preset.
func Preset(name string) (Config, error) {
	cfg := Config{
		Node: NodeConfig{
			Width: 200, Height: 110, PaddingV: 14, Inset: 20,
			WrapChars: 24, WrapPadding: 16, MaxLines: 4, LineGap: 16, Baseline: 4, FontSize: 14,
		},
		Lane: LaneConfig{MinHeight: 160, GridLeft: 130, GridTop: 50, GridRight: 2700, GridBottom: 60},
		Edge: EdgeConfig{
			StartGap: 6, EndGap: 12, StraightEpsilon: 4,
			BusTolerance: 10, BusSpacing: 14, CornerRadius: 18, MinCornerRadius: 6,
		},
		Shape: ShapeConfig{
			EventRadius: 24, GatewaySize: 48, LabelGap: 8, LabelBaseline: 6,
			ChipHeight: 24, ChipSpacing: 6, ChipPadLeft: 10, ChipPadBottom: 10, NoteInset: 12,
		},
		Canvas: CanvasConfig{
			MinHeight: 600, MarginRight: 40, PhaseLabelRise: 10,
			LaneLabelX: 115, LaneLabelChars: 14, LaneLabelLines: 3,
		},
		Tags: flow.DefaultTags(),
	}

	switch strings.ToLower(name) {
	case "", PresetLarge:
	case PresetStandard:
		cfg.Node = NodeConfig{
			Width: 170, Height: 95, PaddingV: 12, Inset: 16,
			WrapChars: 21, WrapPadding: 14, MaxLines: 4, LineGap: 15, Baseline: 4, FontSize: 13,
		}
		cfg.Lane = LaneConfig{MinHeight: 140, GridLeft: 120, GridTop: 45, GridRight: 2300, GridBottom: 50}
		cfg.Shape.EventRadius, cfg.Shape.GatewaySize = 21, 42
		cfg.Shape.ChipHeight = 20
		cfg.Canvas.LaneLabelX = 105
	case PresetCompact:
		cfg.Node = NodeConfig{
			Width: 140, Height: 80, PaddingV: 10, Inset: 12,
			WrapChars: 18, WrapPadding: 12, MaxLines: 3, LineGap: 14, Baseline: 4, FontSize: 12,
		}
		cfg.Lane = LaneConfig{MinHeight: 120, GridLeft: 110, GridTop: 40, GridRight: 1900, GridBottom: 40}
		cfg.Edge.CornerRadius, cfg.Edge.MinCornerRadius = 12, 4
		cfg.Shape.EventRadius, cfg.Shape.GatewaySize = 18, 36
		cfg.Shape.ChipHeight, cfg.Shape.ChipPadBottom = 18, 6
		cfg.Canvas.LaneLabelX, cfg.Canvas.LaneLabelChars = 95, 12
		cfg.Canvas.MinHeight = 400
	default:
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown preset %q (want one of %s)", name, strings.Join(Presets(), ", "))
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, formatValidationError(err), "invalid layout configuration")
	}
	for _, id := range c.Tags.IDs() {
		if src := c.Tags[id].Source; src != "" {
			if err := errs.ValidatePath(src); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidConfig, err, "tag %q", id)
			}
		}
	}
	return nil
}

// LoadConfig decodes a TOML file over base and validates the result. Keys
// the file sets replace the base values; tag entries are merged field by
// field. Unknown keys are an error.
func LoadConfig(path string, base Config) (Config, error) {
	cfg := base
	cfg.Tags = nil

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Tags = base.Tags.Merge(cfg.Tags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", field, e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must not be negative", field))
		case "gtfield":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", field, e.Param()))
		case "ltefield":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
