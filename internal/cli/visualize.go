package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/pipeline"
	"github.com/matzehuels/swimlane/pkg/render/sink"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a diagram from a computed layout",
		Long: `Render a diagram from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG or PDF. The layout contains all positioning
information, so this step is purely about drawing.

Use 'render' as a shortcut to go directly from a document to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateViewFormats(pipeline.ViewSwimlane, opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.Minimap, "minimap", 0, "minimap size as a fraction of the canvas (0 disables)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.Static, "static", false, "omit the interactive script from SVG output")

	return cmd
}

// runVisualize loads the geometry and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open layout %s: %w", input, err)
	}
	g, err := sink.ReadJSON(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.View = pipeline.ViewSwimlane
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Rendering swimlane...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, nil, g, opts)
	if err != nil {
		spinner.Fail("Visualization failed")
		if spinner.Interrupted() {
			return ctx.Err()
		}
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     trimLayoutSuffix(input),
		output:    output,
		nodes:     len(g.Nodes),
		flows:     len(g.Edges),
		cacheHit:  cacheHit,
	})
}

// trimLayoutSuffix maps "x.layout.json" to "x.json" so outputs land at "x.svg".
func trimLayoutSuffix(input string) string {
	const suffix = ".layout.json"
	if len(input) > len(suffix) && input[len(input)-len(suffix):] == suffix {
		return input[:len(input)-len(suffix)] + ".json"
	}
	return input
}
