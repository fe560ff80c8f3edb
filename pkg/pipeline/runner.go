package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/httputil"
	"github.com/matzehuels/swimlane/pkg/layout"
	"github.com/matzehuels/swimlane/pkg/observability"
	"github.com/matzehuels/swimlane/pkg/render/sink"
	"github.com/matzehuels/swimlane/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and service use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, client and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Client fetches http(s) sources. It shares Cache.
	Client *httputil.Client
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Client: httputil.NewClient(c, "document", cache.TTLHTTP, nil, httputil.WithKeyer(keyer)),
	}
}

// Open resolves opts.Input or opts.Source to a document source.
func (r *Runner) Open(opts Options) (source.Source, error) {
	if opts.Input != nil {
		return opts.Input, nil
	}
	return source.Open(opts.Source, source.WithClient(r.Client))
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	src, err := r.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	doc, loadHit, err := r.LoadWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(doc.Nodes)
	result.Stats.FlowCount = len(doc.Flows)
	result.CacheInfo.LoadHit = loadHit
	result.DocumentHash = documentHash(doc)

	opts.Logger.Info("loaded document",
		"source", source.Describe(src),
		"nodes", len(doc.Nodes),
		"flows", len(doc.Flows),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	g, layoutHit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Geometry = g
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.DroppedNodes = len(g.Dropped.Nodes)
	result.Stats.DroppedFlows = len(g.Dropped.Flows)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"preset", opts.Preset,
		"size", fmt.Sprintf("%gx%g", g.Width, g.Height),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"view", opts.View,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads the document and returns cache hit info.
// Only documents fetched over HTTP are cached; files and stdin are always
// read fresh.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, src source.Source, opts Options) (*flow.Document, bool, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.Name())
	start := time.Now()

	_, remote := src.(*source.HTTP)
	cacheKey := r.Keyer.DocumentKey(src.Name())

	if remote && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := flow.Parse(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "document")
				hooks.OnLoadComplete(ctx, src.Name(), len(doc.Nodes), time.Since(start), nil)
				return doc, true, nil // Cache hit
			}
			// If decoding fails, fall through to reload
		}
		observability.Cache().OnCacheMiss(ctx, "document")
	}

	doc, err := src.Load(ctx)
	if err != nil {
		hooks.OnLoadComplete(ctx, src.Name(), 0, time.Since(start), err)
		return nil, false, err
	}
	if report := doc.Check(); !report.OK() {
		for _, issue := range report.Issues {
			opts.Logger.Warn("document issue", "issue", issue.String())
		}
	}

	if remote {
		if data, err := flow.Marshal(doc); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLDocument) == nil {
				observability.Cache().OnCacheSet(ctx, "document", len(data))
			}
		}
	}

	hooks.OnLoadComplete(ctx, src.Name(), len(doc.Nodes), time.Since(start), nil)
	return doc, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, src source.Source, opts Options) (*flow.Document, error) {
	doc, _, err := r.LoadWithCacheInfo(ctx, src, opts)
	return doc, err
}

// LayoutWithCacheInfo computes the geometry with caching and returns cache hit info.
// Dropped nodes and flows are logged at warn level on every call, including
// cache hits.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *flow.Document, opts Options) (*layout.Geometry, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	cfg, err := opts.ResolveConfig()
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Preset, len(doc.Nodes))
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(documentHash(doc), opts.LayoutKeyOpts(cfg))

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if g, err := sink.ReadJSON(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			reportDropped(opts.Logger, g.Dropped)
			hooks.OnLayoutComplete(ctx, opts.Preset, droppedCount(g.Dropped), time.Since(start), nil)
			return g, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	g, err := ComputeLayout(doc, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, opts.Preset, 0, time.Since(start), err)
		return nil, false, err
	}
	reportDropped(opts.Logger, g.Dropped)

	// Cache the result
	if data, err := sink.RenderJSON(g); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	hooks.OnLayoutComplete(ctx, opts.Preset, droppedCount(g.Dropped), time.Since(start), nil)
	return g, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc *flow.Document, opts Options) (*layout.Geometry, error) {
	g, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return g, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *flow.Document, g *layout.Geometry, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// The overview is drawn from the document, the swimlane from the geometry.
	var keyHash string
	if opts.IsOverview() {
		keyHash = documentHash(doc)
	} else {
		data, err := sink.RenderJSON(g)
		if err != nil {
			return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
		}
		keyHash = cache.Hash(data)
	}

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := Render(ctx, doc, g, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc *flow.Document, g *layout.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// reportDropped logs every element the layout left out.
func reportDropped(logger *log.Logger, d layout.Dropped) {
	for _, id := range d.Nodes {
		logger.Warn("node dropped: phase or lane not in document", "node", id)
	}
	for _, f := range d.Flows {
		logger.Warn("flow dropped: endpoint not placed", "from", f.From, "to", f.To)
	}
}

func droppedCount(d layout.Dropped) int {
	return len(d.Nodes) + len(d.Flows)
}

// documentHash hashes the canonical JSON form of doc.
func documentHash(doc *flow.Document) string {
	data, err := flow.Marshal(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
