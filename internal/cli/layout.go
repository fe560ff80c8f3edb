package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/pipeline"
	"github.com/matzehuels/swimlane/pkg/render/sink"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Compute the swimlane geometry of a flow document",
		Long: `Compute the swimlane geometry of a flow document.

The layout command places every node, sizes the lanes and routes the flows.
The output is a layout.json file (same format as 'render -f json') that can
be rendered to SVG/PNG/PDF using the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "refetch remote documents")

	// Layout flags
	cmd.Flags().BoolVar(&opts.NoMeasure, "no-measure", false, "wrap labels by character count instead of font metrics")

	return cmd
}

// runLayout loads the document, computes the geometry, and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := c.baseOptions()
	opts.Source = input
	opts.Preset = base.Preset
	opts.ConfigPath = base.ConfigPath
	opts.Logger = base.Logger

	src, err := runner.Open(opts)
	if err != nil {
		return err
	}
	doc, err := runner.Load(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Computing swimlane layout...")
	spinner.Start()

	prog := newProgress(c.Logger)
	g, cacheHit, err := runner.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.Fail("Layout failed")
		if spinner.Interrupted() {
			return ctx.Err()
		}
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d nodes", len(g.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(g)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath(input)
	}
	if err := writeFile(outputPath, data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if outputPath == "-" {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(doc.Nodes), len(doc.Flows), cacheStatusOf(cacheHit))
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// layoutPath derives "<input>.layout.json" from the document reference.
func layoutPath(input string) string {
	return basePath("", input) + ".layout.json"
}
