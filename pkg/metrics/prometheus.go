package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/labops/go-sdk/pkg/types"
)

// PrometheusMetric adapts Prometheus metric vectors to our Metric interface
type PrometheusMetric struct {
	collector prometheus.Collector
	vec       interface{} // CounterVec, GaugeVec or HistogramVec
	labels    []string
}

// convertLabels converts our MetricLabels to Prometheus labels
func convertLabels(labels []types.MetricLabel) prometheus.Labels {
	if len(labels) == 0 {
		return nil
	}
	promLabels := make(prometheus.Labels)
	for _, l := range labels {
		promLabels[l.Name] = l.Value
	}
	return promLabels
}

// getLabelNames extracts label names from MetricLabels
func getLabelNames(labels []types.MetricLabel) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func (m *PrometheusMetric) Inc(labels ...types.MetricLabel) {
	if counter, ok := m.vec.(*prometheus.CounterVec); ok {
		counter.With(convertLabels(labels)).Inc()
	}
}

func (m *PrometheusMetric) Add(value float64, labels ...types.MetricLabel) {
	if counter, ok := m.vec.(*prometheus.CounterVec); ok {
		counter.With(convertLabels(labels)).Add(value)
	}
}

func (m *PrometheusMetric) Set(value float64, labels ...types.MetricLabel) {
	if gauge, ok := m.vec.(*prometheus.GaugeVec); ok {
		gauge.With(convertLabels(labels)).Set(value)
	}
}

func (m *PrometheusMetric) Observe(value float64, labels ...types.MetricLabel) {
	if histogram, ok := m.vec.(*prometheus.HistogramVec); ok {
		histogram.With(convertLabels(labels)).Observe(value)
	}
}

// PrometheusCollector implements our MetricsCollector interface
type PrometheusCollector struct {
	registry  *prometheus.Registry
	metrics   sync.Map
	namespace string
}

// NewPrometheusCollector creates a new PrometheusCollector
func NewPrometheusCollector(registry *prometheus.Registry) *PrometheusCollector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &PrometheusCollector{
		registry: registry,
	}
}

func (c *PrometheusCollector) buildMetricName(name string) string {
	if c.namespace == "" {
		return name
	}
	return fmt.Sprintf("%s_%s", c.namespace, name)
}

func (c *PrometheusCollector) NewMetric(opts types.MetricOpts) (types.Metric, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metric options: %w", err)
	}

	name := c.buildMetricName(opts.Name)
	if opts.Subsystem != "" {
		name = fmt.Sprintf("%s_%s", opts.Subsystem, name)
	}

	labelNames := getLabelNames(opts.Labels)

	var collector prometheus.Collector
	var vec interface{}

	switch opts.Type {
	case types.MetricTypeCounter:
		counterVec := prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name,
				Help: opts.Help,
			},
			labelNames,
		)
		collector = counterVec
		vec = counterVec

	case types.MetricTypeGauge:
		gaugeVec := prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: name,
				Help: opts.Help,
			},
			labelNames,
		)
		collector = gaugeVec
		vec = gaugeVec

	case types.MetricTypeHistogram:
		buckets := opts.Buckets
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		histogramVec := prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name,
				Help:    opts.Help,
				Buckets: buckets,
			},
			labelNames,
		)
		collector = histogramVec
		vec = histogramVec

	default:
		return nil, fmt.Errorf("unsupported metric type: %s", opts.Type)
	}

	metric := &PrometheusMetric{
		collector: collector,
		vec:       vec,
		labels:    labelNames,
	}

	c.metrics.Store(name, metric)
	return metric, nil
}

func (c *PrometheusCollector) Register(metrics ...types.Metric) error {
	for _, m := range metrics {
		if pm, ok := m.(*PrometheusMetric); ok {
			if err := c.registry.Register(pm.collector); err != nil {
				return fmt.Errorf("failed to register metric: %w", err)
			}
		}
	}
	return nil
}

func (c *PrometheusCollector) WithNamespace(namespace string) types.MetricsCollector {
	return &PrometheusCollector{
		registry:  c.registry,
		namespace: namespace,
	}
}

// GetRegistry returns the underlying Prometheus registry
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
