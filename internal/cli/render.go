package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output     string
	formatsStr string
	noCache    bool
	workspace  string
	notes      notesFlags
}

// renderCommand creates the render command: load, layout and render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a flow document to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a flow document to a swimlane diagram.

The document may be a JSON or YAML file, an http(s) URL, or "-" for standard
input. Several formats can be requested at once (-f svg,png); each is written
next to the input unless -o names a file or base path.

The overview view (--view overview) renders a node-link graph with Graphviz
instead of the swimlane grid and additionally supports the dot format.

Notes from a workspace (--workspace with --notes-url or --notes-file) are
attached to their nodes as hover text and note badges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateViewFormats(opts.View, opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "refetch remote documents and notes")

	// Layout flags
	cmd.Flags().BoolVar(&opts.NoMeasure, "no-measure", false, "wrap labels by character count instead of font metrics")

	// Render flags
	cmd.Flags().StringVar(&opts.View, "view", opts.View, "view: swimlane (default), overview")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.Minimap, "minimap", 0, "minimap size as a fraction of the canvas (0 disables)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.Static, "static", false, "omit the interactive script from SVG output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include phase and tags in overview labels")

	// Notes flags
	cmd.Flags().StringVar(&flags.workspace, "workspace", "", "notes workspace to attach")
	flags.notes.register(cmd)

	return cmd
}

// runRender executes the full pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := c.baseOptions()
	opts.Source = input
	opts.Preset = base.Preset
	opts.ConfigPath = base.ConfigPath
	opts.Logger = base.Logger

	src, err := flags.notes.source(runner.Cache, opts.Refresh)
	if err != nil {
		return err
	}
	if opts.Notes, err = loadNotes(ctx, src, flags.workspace); err != nil {
		return fmt.Errorf("load notes: %w", err)
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.View))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.Fail("Render failed")
		if spinner.Interrupted() {
			return ctx.Err()
		}
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger := loggerFromContext(ctx)
	for _, format := range opts.Formats {
		logger.Debugf("Generated %s: %d bytes", format, len(result.Artifacts[format]))
	}

	if dropped := result.Stats.DroppedNodes + result.Stats.DroppedFlows; dropped > 0 {
		printWarning("%d element(s) not drawn (run with -v for details)", dropped)
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		nodes:     result.Stats.NodeCount,
		flows:     result.Stats.FlowCount,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}
