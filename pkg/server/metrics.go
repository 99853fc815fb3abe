package server

import (
	"strings"
	"time"

	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/types"
)

// runMetrics tracks validation runs executed through the API
type runMetrics struct {
	runs       types.Metric
	violations types.Metric
	duration   types.Metric
}

func newRunMetrics(collector types.MetricsCollector) *runMetrics {
	m := &runMetrics{}

	m.runs, _ = collector.NewMetric(types.MetricOpts{
		Subsystem: "dq",
		Name:      "validation_runs_total",
		Help:      "Total number of validation runs by outcome",
		Type:      types.MetricTypeCounter,
		Labels:    []types.MetricLabel{{Name: "outcome"}},
	})
	m.violations, _ = collector.NewMetric(types.MetricOpts{
		Subsystem: "dq",
		Name:      "violations_total",
		Help:      "Total violations detected by severity",
		Type:      types.MetricTypeCounter,
		Labels:    []types.MetricLabel{{Name: "severity"}},
	})
	m.duration, _ = collector.NewMetric(types.MetricOpts{
		Subsystem: "dq",
		Name:      "validation_duration_seconds",
		Help:      "Validation run duration in seconds",
		Type:      types.MetricTypeHistogram,
	})

	if m.runs == nil {
		m.runs = &types.NoOpMetric{}
	}
	if m.violations == nil {
		m.violations = &types.NoOpMetric{}
	}
	if m.duration == nil {
		m.duration = &types.NoOpMetric{}
	}

	_ = collector.Register(m.runs, m.violations, m.duration)

	return m
}

// observeRun records one validation run's outcome and violations
func (m *runMetrics) observeRun(start time.Time, violations []dq.Violation, err error) {
	m.duration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "fault"
	}
	m.runs.Inc(types.MetricLabel{Name: "outcome", Value: outcome})

	for _, v := range violations {
		m.violations.Inc(types.MetricLabel{
			Name:  "severity",
			Value: strings.ToLower(string(v.Severity)),
		})
	}
}
