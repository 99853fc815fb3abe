// Package dq implements the data quality rules engine: a declarative rule
// model, per-kind validators, a validation engine that runs a rule catalog
// against an in-memory dataset, and a report builder that aggregates the
// resulting violations.
package dq

import (
	"fmt"
	"strings"
)

// Severity classifies how serious a rule violation is. Severity never
// affects evaluation; a WARNING rule is checked exactly like an ERROR rule.
type Severity string

const (
	// SeverityError indicates a violation that makes the data unusable
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates a violation that needs review
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates an informational finding
	SeverityInfo Severity = "INFO"
)

// ParseSeverity parses a severity string. The empty string defaults to
// ERROR; anything outside the three known severities is rejected so that
// report buckets always account for every violation.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return SeverityError, nil
	case "ERROR":
		return SeverityError, nil
	case "WARNING":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q, expected ERROR, WARNING or INFO", s)
	}
}

// RuleKind identifies which validator evaluates a rule
type RuleKind string

const (
	// KindRequiredColumns checks that all listed columns exist in the dataset
	KindRequiredColumns RuleKind = "required_columns"
	// KindTimestampOrder checks that a received timestamp precedes a processed timestamp
	KindTimestampOrder RuleKind = "timestamp_order"
	// KindNoFutureDates checks that timestamp columns contain no future values
	KindNoFutureDates RuleKind = "no_future_dates"
	// KindAllowedValues checks that a column only holds values from an allowed set
	KindAllowedValues RuleKind = "allowed_values"
	// KindDataTypes checks that columns convert cleanly to a declared type
	KindDataTypes RuleKind = "data_types"
	// KindRangeCheck checks that numeric values stay within a min/max range
	KindRangeCheck RuleKind = "range_check"
	// KindUniqueness checks that a column combination is unique per row
	KindUniqueness RuleKind = "uniqueness"
	// KindCompleteness checks that the missing-value fraction stays under a threshold
	KindCompleteness RuleKind = "completeness"
)

// Rule is an immutable declarative validation check. Rules are built by the
// loader from a rule document or constructed directly by callers; either way
// they are not modified after construction.
type Rule struct {
	// Name identifies the rule in violations and reports. Duplicate names
	// within a catalog are legal; violations simply repeat the name.
	Name string `json:"name" yaml:"name"`

	// Description is free-text documentation for the rule
	Description string `json:"description" yaml:"description"`

	// Kind selects the validator. Unknown kinds are skipped at evaluation
	// time rather than rejected, so newer rule documents degrade gracefully
	// on older engines.
	Kind RuleKind `json:"rule_type" yaml:"rule_type"`

	// Parameters is the kind-specific configuration. Each validator defines
	// its own required and optional keys.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Severity classifies violations emitted by this rule
	Severity Severity `json:"severity" yaml:"severity"`
}

// Violation records one detected data quality failure
type Violation struct {
	// RuleName is the name of the rule that produced this violation
	RuleName string `json:"rule_name"`

	// Description is a check-specific account of what failed
	Description string `json:"description"`

	// Severity is copied from the triggering rule
	Severity Severity `json:"severity"`

	// RowIndices lists the implicated dataset row positions. Empty for
	// structural findings such as a missing column.
	RowIndices []int `json:"row_indices"`

	// Column names the implicated column, a composite like "colA/colB" for
	// cross-column checks, or "schema" for whole-dataset checks.
	Column string `json:"column,omitempty"`

	// Value is the observed bad value(s), for diagnostic display
	Value interface{} `json:"value,omitempty"`

	// Expected describes what the rule expected, for diagnostic display
	Expected interface{} `json:"expected,omitempty"`
}
