package dq

import (
	"time"

	"github.com/google/uuid"
)

// ViolationSummary is the compact, serialization-friendly form of a
// violation: the full row-index list is replaced by its count.
type ViolationSummary struct {
	RuleName     string      `json:"rule_name"`
	Description  string      `json:"description"`
	Severity     Severity    `json:"severity"`
	Column       string      `json:"column,omitempty"`
	Value        interface{} `json:"value,omitempty"`
	Expected     interface{} `json:"expected,omitempty"`
	AffectedRows int         `json:"affected_rows"`
}

// ReportSummary holds the aggregate counts for one validation run. The
// severity enum is closed, so the three named buckets always sum to the
// total.
type ReportSummary struct {
	TotalViolations int       `json:"total_violations"`
	Errors          int       `json:"errors"`
	Warnings        int       `json:"warnings"`
	Info            int       `json:"info"`
	Timestamp       time.Time `json:"timestamp"`
}

// Report is a pure projection over one run's violation list. It holds no
// state of its own and is rebuilt from scratch on every GenerateReport
// call. Both the in-memory form and the JSON form use violation summaries;
// callers that need row-level detail use the violations returned by
// Validate.
type Report struct {
	ID               string                        `json:"report_id"`
	Summary          ReportSummary                 `json:"summary"`
	ViolationsByRule map[string][]ViolationSummary `json:"violations_by_rule"`
	AllViolations    []ViolationSummary            `json:"all_violations"`

	// RuleOrder lists the distinct rule names in first-violation order,
	// since the map above cannot carry ordering.
	RuleOrder []string `json:"-"`
}

// GenerateReport aggregates a violation list into a report. An empty (or
// nil) list produces a zeroed report, the normal "all checks passed"
// outcome.
func GenerateReport(violations []Violation) *Report {
	report := &Report{
		ID:               uuid.NewString(),
		ViolationsByRule: make(map[string][]ViolationSummary),
		AllViolations:    make([]ViolationSummary, 0, len(violations)),
		Summary: ReportSummary{
			TotalViolations: len(violations),
			Timestamp:       time.Now().UTC(),
		},
	}

	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			report.Summary.Errors++
		case SeverityWarning:
			report.Summary.Warnings++
		case SeverityInfo:
			report.Summary.Info++
		}

		summary := ViolationSummary{
			RuleName:     v.RuleName,
			Description:  v.Description,
			Severity:     v.Severity,
			Column:       v.Column,
			Value:        v.Value,
			Expected:     v.Expected,
			AffectedRows: len(v.RowIndices),
		}

		if _, seen := report.ViolationsByRule[v.RuleName]; !seen {
			report.RuleOrder = append(report.RuleOrder, v.RuleName)
		}
		report.ViolationsByRule[v.RuleName] = append(report.ViolationsByRule[v.RuleName], summary)
		report.AllViolations = append(report.AllViolations, summary)
	}

	return report
}
