package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/swimlane/pkg/observability"
)

// Metrics holds the service's Prometheus collectors. It implements the
// observability hook interfaces so the pipeline, cache and HTTP client
// report into the same registry as the request middleware.
type Metrics struct {
	// HTTP server
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Pipeline
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	DocumentNodes prometheus.Histogram
	DroppedTotal  prometheus.Counter

	// Cache
	CacheEvents *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	// Outgoing HTTP
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swimlane_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swimlane_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "swimlane_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swimlane_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),
		StageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swimlane_pipeline_stage_errors_total",
				Help: "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		),
		DocumentNodes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "swimlane_document_nodes",
				Help:    "Number of nodes in loaded documents",
				Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
			},
		),
		DroppedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "swimlane_layout_dropped_total",
				Help: "Total number of nodes and flows left out of layouts",
			},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swimlane_cache_events_total",
				Help: "Cache hits, misses and sets by cache type",
			},
			[]string{"type", "event"},
		),
		CacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swimlane_cache_set_bytes_total",
				Help: "Bytes written to the cache by cache type",
			},
			[]string{"type"},
		),
		UpstreamRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swimlane_upstream_requests_total",
				Help: "Outgoing HTTP requests by host and status",
			},
			[]string{"host", "status"},
		),
		UpstreamDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swimlane_upstream_request_duration_seconds",
				Help:    "Outgoing HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		registry: reg,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) stage(stage string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(stage).Inc()
	}
}

// OnLoadStart implements observability.PipelineHooks.
func (m *Metrics) OnLoadStart(context.Context, string) {}

// OnLoadComplete implements observability.PipelineHooks.
func (m *Metrics) OnLoadComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	m.stage("load", d, err)
	if err == nil {
		m.DocumentNodes.Observe(float64(nodeCount))
	}
}

// OnLayoutStart implements observability.PipelineHooks.
func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

// OnLayoutComplete implements observability.PipelineHooks.
func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, dropped int, d time.Duration, err error) {
	m.stage("layout", d, err)
	m.DroppedTotal.Add(float64(dropped))
}

// OnRenderStart implements observability.PipelineHooks.
func (m *Metrics) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, cacheType string) {
	m.CacheEvents.WithLabelValues(cacheType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, cacheType string) {
	m.CacheEvents.WithLabelValues(cacheType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, cacheType string, size int) {
	m.CacheEvents.WithLabelValues(cacheType, "set").Inc()
	m.CacheBytes.WithLabelValues(cacheType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.UpstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

// OnError implements observability.HTTPHooks.
func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.UpstreamRequests.WithLabelValues(host, "error").Inc()
}
