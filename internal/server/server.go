package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/swimlane/pkg/notes"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 4 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Status announcements sent in the X-Diagram-Status header.
const (
	StatusHeader = "X-Diagram-Status"
	StatusLoaded = "Diagram loaded"
	StatusFailed = "Failed to load layout"
)

// Config holds the service settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Source is the document served by GET requests: a file path or an
	// http(s) URL. Empty means only POST requests can render.
	Source string

	// Preset and ConfigPath set the default layout configuration.
	Preset     string
	ConfigPath string

	// NoMeasure wraps labels by character count.
	NoMeasure bool

	// MaxBodyBytes limits posted documents.
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Preset == "" {
		c.Preset = pipeline.DefaultPreset
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Server is the HTTP rendering service.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	notes   notes.Source
	logger  *log.Logger
	metrics *Metrics
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithNotes sets the notes backend used for the workspace parameter.
func WithNotes(src notes.Source) Option {
	return func(s *Server) { s.notes = src }
}

// WithMetrics sets the metrics collectors. By default a fresh registry is
// created; call [Metrics.Register] to also receive pipeline events.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server. The runner's cache is shared by all requests.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Post("/layout", s.handleLayout)
		r.Get("/diagram.{format}", s.handleDiagram)
		r.Post("/diagram.{format}", s.handleDiagram)
		r.Get("/nodes", s.handleNodes)
		r.Get("/nodes/{id}", s.handleNode)
		r.Get("/workspaces", s.handleWorkspaces)
		r.Get("/workspaces/{id}/summary", s.handleSummary)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody(r, "NOT_FOUND", "no route for "+r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "source", s.cfg.Source, "preset", s.cfg.Preset)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
