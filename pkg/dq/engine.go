package dq

import (
	"github.com/google/uuid"

	"github.com/labops/go-sdk/pkg/dataset"
	"github.com/labops/go-sdk/pkg/types"
)

// Engine runs a rule catalog against datasets and collects violations.
// It is not safe for concurrent use; each validation run is a single
// synchronous pass over the catalog.
type Engine struct {
	catalog    *Catalog
	logger     types.Logger
	violations []Violation
}

// NewEngine creates an engine around the given catalog. A nil catalog gets
// a fresh empty one and a nil logger is replaced with a no-op logger.
func NewEngine(catalog *Catalog, logger types.Logger) *Engine {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = types.NewNoOpLogger()
	}
	return &Engine{
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the engine's rule catalog
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Validate evaluates every catalog rule against the dataset and returns the
// flat violation list. Runs are not cumulative: each call discards the
// previous run's violations. Rules are evaluated in catalog insertion order
// and each rule's violations form a contiguous block in the result. Rules
// with an unknown kind are skipped; a ValidatorFault from any rule aborts
// the whole run.
func (e *Engine) Validate(ds *dataset.Dataset) ([]Violation, error) {
	runID := uuid.NewString()
	e.violations = nil

	log := e.logger.With(types.LogField{Key: "run_id", Value: runID})
	log.Debug("validation run started",
		types.LogField{Key: "rules", Value: e.catalog.Len()},
		types.LogField{Key: "rows", Value: ds.NumRows()},
	)

	for _, rule := range e.catalog.Rules() {
		fn, ok := LookupValidator(rule.Kind)
		if !ok {
			log.Warn("skipping rule with unknown kind",
				types.LogField{Key: "rule", Value: rule.Name},
				types.LogField{Key: "rule_type", Value: string(rule.Kind)},
			)
			continue
		}
		violations, err := fn(ds, rule)
		if err != nil {
			log.Error("validation run aborted",
				types.LogField{Key: "rule", Value: rule.Name},
				types.LogField{Key: "error", Value: err.Error()},
			)
			e.violations = nil
			return nil, err
		}
		e.violations = append(e.violations, violations...)
	}

	log.Info("validation run finished",
		types.LogField{Key: "rules", Value: e.catalog.Len()},
		types.LogField{Key: "violations", Value: len(e.violations)},
	)
	return append([]Violation(nil), e.violations...), nil
}

// Violations returns the violations collected by the most recent Validate
// call.
func (e *Engine) Violations() []Violation {
	return append([]Violation(nil), e.violations...)
}

// GenerateReport builds a report over the most recent run's violations
func (e *Engine) GenerateReport() *Report {
	return GenerateReport(e.violations)
}
