// Package server exposes the rules engine and lab metrics over HTTP.
//
// The server is a handler, not a listener: Handler() is mounted under the
// caller's http.Server or router (the gin adapter does exactly that).
// Datasets are not persisted: callers either attach a CSV to each request
// or upload one into the server's in-memory slot via POST /v1/datasets and
// query the metrics endpoints against it.
package server

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/labops/go-sdk/pkg/alerts"
	"github.com/labops/go-sdk/pkg/dataset"
	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/server/middleware"
	"github.com/labops/go-sdk/pkg/types"
)

// defaultMaxBodyBytes caps uploads at 32 MiB
const defaultMaxBodyBytes = 32 << 20

// Options represents server configuration options
type Options struct {
	// Logger instance
	Logger types.Logger
	// AccessLogger is the zap logger used by the request logging middleware
	AccessLogger *zap.Logger
	// Registry receives HTTP and validation metrics and backs GET /metrics
	Registry *prometheus.Registry
	// Collector creates the validation metrics. Defaults to no-op.
	Collector types.MetricsCollector
	// Catalog holds the server's rules, shared with any hot reloader
	Catalog *dq.Catalog
	// SLAHours is the default turnaround SLA for GET /v1/metrics/sla
	SLAHours float64
	// Notifier, when set, receives SLA breach alerts after SLA queries
	Notifier *alerts.Notifier
	// RateLimit is requests per second, 0 disables limiting
	RateLimit float64
	// MaxBodyBytes caps request bodies, 0 applies the 32 MiB default
	MaxBodyBytes int64
}

// Server is the HTTP API server
type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	logger   types.Logger
	catalog  *dq.Catalog
	metrics  *runMetrics
	notifier *alerts.Notifier
	slaHours float64

	mu   sync.RWMutex
	data *dataset.Dataset
}

// New creates the API server with its routes and middleware wired
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = types.NewNoOpLogger()
	}
	if opts.Collector == nil {
		opts.Collector = types.NewNoOpMetricsCollector()
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Catalog == nil {
		opts.Catalog = dq.NewCatalog()
	}
	if opts.SLAHours == 0 {
		opts.SLAHours = 4
	}

	s := &Server{
		logger:   opts.Logger,
		catalog:  opts.Catalog,
		metrics:  newRunMetrics(opts.Collector),
		notifier: opts.Notifier,
		slaHours: opts.SLAHours,
	}

	mux := http.NewServeMux()
	s.mux = mux
	s.registerRoutes(opts.Registry)

	// A nil *prometheus.Registry must not reach the Registerer interface
	// field, where it would pass the middleware's nil check as a typed nil.
	var registerer prometheus.Registerer
	if opts.Registry != nil {
		registerer = opts.Registry
	}

	middlewares := []middleware.Middleware{
		middleware.Recovery(opts.Logger),
		middleware.LoggingMiddleware(middleware.LoggingConfig{
			Logger:    opts.AccessLogger,
			SkipPaths: []string{"/health", "/metrics"},
		}),
		middleware.MetricsMiddleware(middleware.MetricsConfig{
			Registry:     registerer,
			Subsystem:    "http",
			ExcludePaths: []string{"/health", "/metrics"},
		}),
		middleware.MaxBodySize(opts.MaxBodyBytes),
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		middlewares = append(middlewares, middleware.RateLimit(opts.RateLimit, burst))
	}
	s.handler = middleware.Chain(middlewares...)(mux)

	return s
}

func (s *Server) registerRoutes(registry *prometheus.Registry) {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if registry != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.mux.HandleFunc("POST /v1/dq/validate", s.handleValidate)
	s.mux.HandleFunc("GET /v1/dq/templates", s.handleTemplates)
	s.mux.HandleFunc("POST /v1/dq/rules/lint", s.handleLint)

	s.mux.HandleFunc("POST /v1/datasets", s.handleUploadDataset)
	s.mux.HandleFunc("GET /v1/metrics/tat", s.handleTAT)
	s.mux.HandleFunc("GET /v1/metrics/throughput", s.handleThroughput)
	s.mux.HandleFunc("GET /v1/metrics/errors", s.handleErrors)
	s.mux.HandleFunc("GET /v1/metrics/sla", s.handleSLA)
}

// Handler returns the server's full middleware-wrapped handler, for tests
// and for mounting under another router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Catalog returns the server's rule catalog
func (s *Server) Catalog() *dq.Catalog {
	return s.catalog
}

// SetDataset replaces the in-memory dataset served by the metrics endpoints
func (s *Server) SetDataset(ds *dataset.Dataset) {
	s.mu.Lock()
	s.data = ds
	s.mu.Unlock()
}

// Dataset returns the current in-memory dataset, nil when none is loaded
func (s *Server) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}
