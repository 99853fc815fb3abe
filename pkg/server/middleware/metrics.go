package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/labops/go-sdk/pkg/server/httputil"
)

// MetricsConfig represents configuration for the metrics middleware
type MetricsConfig struct {
	// Registry is the Prometheus registry to use
	Registry prometheus.Registerer

	// Subsystem is the metrics subsystem name
	Subsystem string

	// ExcludePaths are paths to exclude from metrics
	ExcludePaths []string
}

type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

func newMetrics(subsystem string) *metrics {
	m := &metrics{}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Current number of requests being served",
		},
	)

	return m
}

// register registers all metrics with the provided registry
func (m *metrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}

	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	return nil
}

// MetricsMiddleware creates a new metrics middleware
func MetricsMiddleware(config MetricsConfig) Middleware {
	m := newMetrics(config.Subsystem)

	if config.Registry != nil {
		if err := m.register(config.Registry); err != nil {
			panic(err)
		}
	}

	excludePaths := make(map[string]bool)
	for _, path := range config.ExcludePaths {
		excludePaths[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excludePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			rw := httputil.NewResponseWriter(w)

			start := time.Now()
			next.ServeHTTP(rw, r)
			duration := time.Since(start).Seconds()

			status := strconv.Itoa(rw.Status())
			m.requestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			m.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}
