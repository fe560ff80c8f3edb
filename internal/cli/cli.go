// Package cli implements the swimlane command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/buildinfo"
	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/httputil"
	"github.com/matzehuels/swimlane/pkg/notes"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "swimlane"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Layout configuration shared by every command that lays out a document.
	preset     string
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		preset: pipeline.DefaultPreset,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Swimlane lays out and renders business-process diagrams",
		Long: `Swimlane turns a flow document (phases, lanes, nodes and flows) into a
swimlane diagram: lanes sized to their content, nodes stacked inside their
cells and connectors routed around each other.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.preset, "preset", c.preset, "size preset: compact, standard, large")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML layout configuration applied over the preset")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.notesCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/swimlane/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options carrying the global layout flags.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Preset:     c.preset,
		ConfigPath: c.configPath,
		Logger:     c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// =============================================================================
// Notes
// =============================================================================

// notesFlags selects a notes backend: a JSON file or the HTTP API.
type notesFlags struct {
	url  string
	file string
}

func (f *notesFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "notes-url", "", "base URL of the notes service")
	cmd.Flags().StringVar(&f.file, "notes-file", "", "JSON file of notes keyed by workspace")
}

// source returns the configured backend, or nil when none is set.
func (f *notesFlags) source(c cache.Cache, refresh bool) (notes.Source, error) {
	switch {
	case f.url != "" && f.file != "":
		return nil, fmt.Errorf("--notes-url and --notes-file are mutually exclusive")
	case f.file != "":
		return notes.FileSource{Path: f.file}, nil
	case f.url != "":
		client := httputil.NewClient(c, "notes", cache.TTLHTTP, nil, httputil.WithRetry(3, 500*time.Millisecond))
		src, err := notes.NewHTTPSource(f.url, client)
		if err != nil {
			return nil, err
		}
		if refresh {
			src = src.Refresh()
		}
		return src, nil
	default:
		return nil, nil
	}
}

// loadNotes reads one workspace's notes; an empty workspace yields none.
func loadNotes(ctx context.Context, src notes.Source, workspace string) (notes.Notes, error) {
	if workspace == "" {
		return nil, nil
	}
	if src == nil {
		return nil, fmt.Errorf("--workspace needs --notes-url or --notes-file")
	}
	return src.Notes(ctx, workspace)
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input (stdin and URLs
// fall back to "diagram"). A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" || strings.Contains(input, "://") {
			return "diagram"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactWriteParams describes rendered artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	flows     int
	cacheHit  bool
}

// writeArtifacts writes each artifact to disk. A single format goes to
// output verbatim; several formats share a base path.
func writeArtifacts(p artifactWriteParams) error {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := basePath(p.output, p.input) + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	if len(paths) == 1 && paths[0] == "-" {
		return nil
	}
	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.flows, cacheStatusOf(p.cacheHit))
	return nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
