package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/internal/server"
	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr      string
	source    string
	redisURL  string
	noCache   bool
	noMeasure bool
	notes     notesFlags
}

// serveCommand creates the serve command, which runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams over HTTP",
		Long: `Serve diagrams over HTTP.

GET /api/diagram.{svg,png,pdf,json,dot} renders the configured --source;
POST to the same routes renders the posted document. Layout geometry is
served at /api/layout and Prometheus metrics at /metrics.

Results are cached on disk, or in Redis when --redis is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.source, "source", "", "document served by GET requests (file or URL)")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "Redis URL for a shared cache (redis://host:port/db)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.noMeasure, "no-measure", false, "wrap labels by character count instead of font metrics")
	flags.notes.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	store, err := c.serveCache(ctx, flags)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	var opts []server.Option
	src, err := flags.notes.source(store, false)
	if err != nil {
		return err
	}
	if src != nil {
		opts = append(opts, server.WithNotes(src))
	}

	metrics := server.NewMetrics()
	metrics.Register()
	opts = append(opts, server.WithMetrics(metrics))

	srv := server.New(server.Config{
		Addr:       flags.addr,
		Source:     flags.source,
		Preset:     c.preset,
		ConfigPath: c.configPath,
		NoMeasure:  flags.noMeasure,
	}, runner, c.Logger, opts...)

	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(flags.addr)))
	if flags.source != "" {
		printKeyValue("Source", flags.source)
	}
	printKeyValue("Preset", c.preset)
	return srv.Run(ctx)
}

// serveCache picks Redis, the file cache or no cache.
func (c *CLI) serveCache(ctx context.Context, flags serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, flags.redisURL, cache.DefaultRedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Info("Using Redis cache", "prefix", cache.DefaultRedisPrefix)
		return rc, nil
	}
	return newCache(false)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
