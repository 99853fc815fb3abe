package dq

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/labops/go-sdk/pkg/dataset"
)

// ValidatorFunc evaluates one rule against a dataset. Validators never fail
// for data-shape conditions: an absent column, an unparseable value or an
// empty dataset yields zero violations (or a descriptive violation where
// that is the check's purpose). Only parameters the validator cannot
// interpret return a ValidatorFault, which aborts the whole run.
type ValidatorFunc func(ds *dataset.Dataset, rule Rule) ([]Violation, error)

// validators maps every known rule kind to its evaluator. Kinds outside
// this map are soft-skipped by the engine; the registry lookup is the only
// place an unknown kind is tolerated.
var validators = map[RuleKind]ValidatorFunc{
	KindRequiredColumns: checkRequiredColumns,
	KindTimestampOrder:  checkTimestampOrder,
	KindNoFutureDates:   checkNoFutureDates,
	KindAllowedValues:   checkAllowedValues,
	KindDataTypes:       checkDataTypes,
	KindRangeCheck:      checkRangeCheck,
	KindUniqueness:      checkUniqueness,
	KindCompleteness:    checkCompleteness,
}

// LookupValidator returns the validator for a rule kind
func LookupValidator(kind RuleKind) (ValidatorFunc, bool) {
	fn, ok := validators[kind]
	return fn, ok
}

// KnownKinds returns all registered rule kinds in stable order
func KnownKinds() []RuleKind {
	kinds := make([]RuleKind, 0, len(validators))
	for kind := range validators {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// checkRequiredColumns verifies that every listed column exists in the
// dataset. The defect is structural, so the violation carries no row
// indices and names the pseudo-column "schema".
func checkRequiredColumns(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	required, _, err := stringListParam(rule, "columns")
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range required {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return []Violation{{
		RuleName:    rule.Name,
		Description: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		Severity:    rule.Severity,
		RowIndices:  []int{},
		Column:      "schema",
		Value:       missing,
	}}, nil
}

// checkTimestampOrder verifies received < processed for every row where both
// timestamps parse. Equal timestamps count as violations: a specimen cannot
// finish processing in the same instant it was received.
func checkTimestampOrder(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	receivedCol, ok, err := stringParam(rule, "received_column")
	if err != nil {
		return nil, err
	}
	if !ok {
		receivedCol = "received_at"
	}
	processedCol, ok, err := stringParam(rule, "processed_column")
	if err != nil {
		return nil, err
	}
	if !ok {
		processedCol = "processed_at"
	}

	received, okR := ds.Column(receivedCol)
	processed, okP := ds.Column(processedCol)
	if !okR || !okP {
		return nil, nil
	}

	var offending []int
	for i := 0; i < ds.NumRows(); i++ {
		rt, okRT := received[i].Time()
		pt, okPT := processed[i].Time()
		if !okRT || !okPT {
			continue
		}
		if !rt.Before(pt) {
			offending = append(offending, i)
		}
	}
	if len(offending) == 0 {
		return nil, nil
	}

	return []Violation{{
		RuleName: rule.Name,
		Description: fmt.Sprintf("invalid timestamp order: %d rows have %s >= %s",
			len(offending), receivedCol, processedCol),
		Severity:   rule.Severity,
		RowIndices: offending,
		Column:     receivedCol + "/" + processedCol,
	}}, nil
}

// checkNoFutureDates flags rows whose parsed timestamps lie after now, one
// violation per listed column.
func checkNoFutureDates(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	columns, ok, err := stringListParam(rule, "columns")
	if err != nil {
		return nil, err
	}
	if !ok {
		columns = []string{"received_at", "processed_at"}
	}

	now := time.Now()
	var out []Violation
	for _, col := range columns {
		cells, ok := ds.Column(col)
		if !ok {
			continue
		}
		var offending []int
		for i, cell := range cells {
			if t, ok := cell.Time(); ok && t.After(now) {
				offending = append(offending, i)
			}
		}
		if len(offending) == 0 {
			continue
		}
		out = append(out, Violation{
			RuleName:    rule.Name,
			Description: fmt.Sprintf("future dates found in %s: %d rows", col, len(offending)),
			Severity:    rule.Severity,
			RowIndices:  offending,
			Column:      col,
		})
	}
	return out, nil
}

// checkAllowedValues verifies that every value in a column belongs to the
// allowed set. Missing values are not members of any allowed set and are
// flagged like any other invalid value.
func checkAllowedValues(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	column, err := requiredStringParam(rule, "column")
	if err != nil {
		return nil, err
	}
	allowed, _, err := stringListParam(rule, "allowed_values")
	if err != nil {
		return nil, err
	}

	cells, ok := ds.Column(column)
	if !ok {
		return nil, nil
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		allowedSet[v] = true
	}

	var offending []int
	var invalid []string
	seen := make(map[string]bool)
	for i, cell := range cells {
		v := cell.String()
		if allowedSet[v] {
			continue
		}
		offending = append(offending, i)
		if !seen[v] {
			seen[v] = true
			invalid = append(invalid, v)
		}
	}
	if len(offending) == 0 {
		return nil, nil
	}

	return []Violation{{
		RuleName:    rule.Name,
		Description: fmt.Sprintf("invalid values in %s: %s", column, strings.Join(invalid, ", ")),
		Severity:    rule.Severity,
		RowIndices:  offending,
		Column:      column,
		Value:       invalid,
		Expected:    allowed,
	}}, nil
}

// checkDataTypes verifies that each declared column converts cleanly to its
// declared type. The test is whole-column: a single unconvertible value
// marks the entire column defective, so the violation conservatively lists
// every dataset row.
func checkDataTypes(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	declared, ok, err := stringMapParam(rule, "columns")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	// Map iteration order is random; sort for a deterministic violation order.
	names := make([]string, 0, len(declared))
	for name := range declared {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Violation
	for _, col := range names {
		wantType := declared[col]
		cells, ok := ds.Column(col)
		if !ok {
			continue
		}

		convertible := true
		switch wantType {
		case "datetime":
			for _, cell := range cells {
				if cell.IsMissing() {
					continue
				}
				if _, ok := cell.Time(); !ok {
					convertible = false
					break
				}
			}
		case "numeric":
			for _, cell := range cells {
				if cell.IsMissing() {
					continue
				}
				if _, ok := cell.Float(); !ok {
					convertible = false
					break
				}
			}
		default:
			return nil, NewValidatorFault(rule, "unsupported data type %q for column %s", wantType, col)
		}
		if convertible {
			continue
		}

		allRows := make([]int, ds.NumRows())
		for i := range allRows {
			allRows[i] = i
		}
		out = append(out, Violation{
			RuleName:    rule.Name,
			Description: fmt.Sprintf("column %s cannot be converted to %s", col, wantType),
			Severity:    rule.Severity,
			RowIndices:  allRows,
			Column:      col,
			Expected:    wantType,
		})
	}
	return out, nil
}

// checkRangeCheck verifies numeric column values against an optional min
// and max bound. Below-minimum and above-maximum findings are separate
// violations so a report can distinguish the two failure directions.
func checkRangeCheck(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	column, err := requiredStringParam(rule, "column")
	if err != nil {
		return nil, err
	}
	min, hasMin, err := numberParam(rule, "min")
	if err != nil {
		return nil, err
	}
	max, hasMax, err := numberParam(rule, "max")
	if err != nil {
		return nil, err
	}
	if !hasMin && !hasMax {
		return nil, nil
	}

	cells, ok := ds.Column(column)
	if !ok {
		return nil, nil
	}

	var belowMin, aboveMax []int
	for i, cell := range cells {
		f, ok := cell.Float()
		if !ok {
			continue
		}
		if hasMin && f < min {
			belowMin = append(belowMin, i)
		}
		if hasMax && f > max {
			aboveMax = append(aboveMax, i)
		}
	}

	var out []Violation
	if len(belowMin) > 0 {
		out = append(out, Violation{
			RuleName:    rule.Name,
			Description: fmt.Sprintf("values below minimum %v in %s: %d rows", min, column, len(belowMin)),
			Severity:    rule.Severity,
			RowIndices:  belowMin,
			Column:      column,
			Value:       fmt.Sprintf("< %v", min),
		})
	}
	if len(aboveMax) > 0 {
		out = append(out, Violation{
			RuleName:    rule.Name,
			Description: fmt.Sprintf("values above maximum %v in %s: %d rows", max, column, len(aboveMax)),
			Severity:    rule.Severity,
			RowIndices:  aboveMax,
			Column:      column,
			Value:       fmt.Sprintf("> %v", max),
		})
	}
	return out, nil
}

// checkUniqueness verifies that the combination of values across the listed
// columns is unique per row. Every member of a duplicate group is listed,
// not just the later occurrences.
func checkUniqueness(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	columns, _, err := stringListParam(rule, "columns")
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}

	cols := make([][]dataset.Cell, len(columns))
	for i, name := range columns {
		cells, ok := ds.Column(name)
		if !ok {
			return nil, nil
		}
		cols[i] = cells
	}

	key := func(row int) string {
		parts := make([]string, len(cols))
		for i, cells := range cols {
			parts[i] = cells[row].String()
		}
		return strings.Join(parts, "\x1f")
	}

	counts := make(map[string]int)
	for row := 0; row < ds.NumRows(); row++ {
		counts[key(row)]++
	}

	var offending []int
	for row := 0; row < ds.NumRows(); row++ {
		if counts[key(row)] > 1 {
			offending = append(offending, row)
		}
	}
	if len(offending) == 0 {
		return nil, nil
	}

	return []Violation{{
		RuleName: rule.Name,
		Description: fmt.Sprintf("duplicate values found in columns %s: %d rows",
			strings.Join(columns, ", "), len(offending)),
		Severity:   rule.Severity,
		RowIndices: offending,
		Column:     strings.Join(columns, ", "),
	}}, nil
}

// checkCompleteness verifies that the missing-value fraction of each listed
// column does not exceed the threshold. A fraction exactly equal to the
// threshold is compliant.
func checkCompleteness(ds *dataset.Dataset, rule Rule) ([]Violation, error) {
	columns, _, err := stringListParam(rule, "columns")
	if err != nil {
		return nil, err
	}
	threshold, ok, err := numberParam(rule, "threshold")
	if err != nil {
		return nil, err
	}
	if !ok {
		threshold = 0.0
	}
	if ds.NumRows() == 0 {
		return nil, nil
	}

	var out []Violation
	for _, col := range columns {
		cells, ok := ds.Column(col)
		if !ok {
			continue
		}
		var missingRows []int
		for i, cell := range cells {
			if cell.IsMissing() {
				missingRows = append(missingRows, i)
			}
		}
		fraction := float64(len(missingRows)) / float64(ds.NumRows())
		if fraction <= threshold {
			continue
		}
		out = append(out, Violation{
			RuleName: rule.Name,
			Description: fmt.Sprintf("missing values in %s: %d (%.1f%%)",
				col, len(missingRows), fraction*100),
			Severity:   rule.Severity,
			RowIndices: missingRows,
			Column:     col,
			Value:      fmt.Sprintf("%d missing (%.1f%%)", len(missingRows), fraction*100),
			Expected:   fmt.Sprintf("<= %.1f%% missing", threshold*100),
		})
	}
	return out, nil
}
