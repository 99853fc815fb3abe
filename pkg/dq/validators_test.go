package dq

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops/go-sdk/pkg/dataset"
)

func mustDataset(t *testing.T, columns []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(columns, rows)
	require.NoError(t, err)
	return ds
}

func TestCheckRequiredColumns(t *testing.T) {
	rule := Rule{
		Name:     "required",
		Kind:     KindRequiredColumns,
		Severity: SeverityError,
		Parameters: map[string]interface{}{
			"columns": []interface{}{"a", "b", "c"},
		},
	}

	t.Run("missing column", func(t *testing.T) {
		ds := mustDataset(t, []string{"a", "b"}, [][]string{{"1", "2"}})
		violations, err := checkRequiredColumns(ds, rule)
		require.NoError(t, err)
		require.Len(t, violations, 1)

		v := violations[0]
		assert.Equal(t, "schema", v.Column)
		assert.Empty(t, v.RowIndices)
		assert.NotNil(t, v.RowIndices)
		assert.Equal(t, []string{"c"}, v.Value)
	})

	t.Run("all present", func(t *testing.T) {
		ds := mustDataset(t, []string{"a", "b", "c"}, nil)
		violations, err := checkRequiredColumns(ds, rule)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestCheckTimestampOrder(t *testing.T) {
	rule := Rule{Name: "order", Kind: KindTimestampOrder, Severity: SeverityError}

	t.Run("reversed and equal timestamps violate", func(t *testing.T) {
		ds := mustDataset(t,
			[]string{"received_at", "processed_at"},
			[][]string{
				{"2024-01-02T00:00:00", "2024-01-01T00:00:00"}, // processed before received
				{"2024-01-01T00:00:00", "2024-01-01T00:00:00"}, // equal also violates
				{"2024-01-01T00:00:00", "2024-01-01T01:00:00"}, // valid
				{"garbage", "2024-01-01T00:00:00"},             // unparseable, skipped
			},
		)
		violations, err := checkTimestampOrder(ds, rule)
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, []int{0, 1}, violations[0].RowIndices)
		assert.Equal(t, "received_at/processed_at", violations[0].Column)
	})

	t.Run("custom column names", func(t *testing.T) {
		custom := rule
		custom.Parameters = map[string]interface{}{
			"received_column":  "in_ts",
			"processed_column": "out_ts",
		}
		ds := mustDataset(t,
			[]string{"in_ts", "out_ts"},
			[][]string{{"2024-01-02T00:00:00", "2024-01-01T00:00:00"}},
		)
		violations, err := checkTimestampOrder(ds, custom)
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, "in_ts/out_ts", violations[0].Column)
	})

	t.Run("column absent yields no violations", func(t *testing.T) {
		ds := mustDataset(t, []string{"received_at"}, [][]string{{"2024-01-01"}})
		violations, err := checkTimestampOrder(ds, rule)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestCheckNoFutureDates(t *testing.T) {
	future := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	past := "2024-01-01T00:00:00"

	rule := Rule{
		Name:     "no-future",
		Kind:     KindNoFutureDates,
		Severity: SeverityWarning,
		Parameters: map[string]interface{}{
			"columns": []interface{}{"received_at", "processed_at"},
		},
	}

	ds := mustDataset(t,
		[]string{"received_at", "processed_at"},
		[][]string{
			{past, past},
			{future, past},
			{future, future},
		},
	)

	violations, err := checkNoFutureDates(ds, rule)
	require.NoError(t, err)
	require.Len(t, violations, 2, "one violation per column")

	assert.Equal(t, "received_at", violations[0].Column)
	assert.Equal(t, []int{1, 2}, violations[0].RowIndices)
	assert.Equal(t, "processed_at", violations[1].Column)
	assert.Equal(t, []int{2}, violations[1].RowIndices)
}

func TestCheckAllowedValues(t *testing.T) {
	rule := Rule{
		Name:     "status-values",
		Kind:     KindAllowedValues,
		Severity: SeverityError,
		Parameters: map[string]interface{}{
			"column":         "status",
			"allowed_values": []interface{}{"ok"},
		},
	}

	t.Run("invalid value flagged with distinct values", func(t *testing.T) {
		ds := mustDataset(t, []string{"status"}, [][]string{{"ok"}, {"ok"}, {"bad"}, {"ok"}})
		violations, err := checkAllowedValues(ds, rule)
		require.NoError(t, err)
		require.Len(t, violations, 1)

		v := violations[0]
		assert.Equal(t, []int{2}, v.RowIndices)
		assert.Equal(t, []string{"bad"}, v.Value)
		assert.Equal(t, []string{"ok"}, v.Expected)
		assert.Equal(t, "status", v.Column)
	})

	t.Run("missing column parameter is a fault", func(t *testing.T) {
		bad := rule
		bad.Parameters = map[string]interface{}{"allowed_values": []interface{}{"ok"}}
		ds := mustDataset(t, []string{"status"}, nil)
		_, err := checkAllowedValues(ds, bad)
		require.Error(t, err)
		assert.True(t, IsValidatorFault(err))
	})

	t.Run("absent dataset column yields no violations", func(t *testing.T) {
		ds := mustDataset(t, []string{"other"}, [][]string{{"x"}})
		violations, err := checkAllowedValues(ds, rule)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestCheckDataTypes(t *testing.T) {
	rule := Rule{
		Name:     "types",
		Kind:     KindDataTypes,
		Severity: SeverityError,
		Parameters: map[string]interface{}{
			"columns": map[string]interface{}{
				"received_at": "datetime",
				"tat_minutes": "numeric",
			},
		},
	}

	t.Run("unconvertible column flags all rows", func(t *testing.T) {
		ds := mustDataset(t,
			[]string{"received_at", "tat_minutes"},
			[][]string{
				{"2024-01-01T00:00:00", "12.5"},
				{"not a timestamp", "30"},
				{"2024-01-02T00:00:00", "45"},
			},
		)
		violations, err := checkDataTypes(ds, rule)
		require.NoError(t, err)
		require.Len(t, violations, 1)

		v := violations[0]
		assert.Equal(t, "received_at", v.Column)
		assert.Equal(t, []int{0, 1, 2}, v.RowIndices)
		assert.Equal(t, "datetime", v.Expected)
	})

	t.Run("missing cells do not break conversion", func(t *testing.T) {
		ds := mustDataset(t,
			[]string{"received_at", "tat_minutes"},
			[][]string{{"", "NA"}, {"2024-01-01", "10"}},
		)
		violations, err := checkDataTypes(ds, rule)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})

	t.Run("unknown declared type is a fault", func(t *testing.T) {
		bad := rule
		bad.Parameters = map[string]interface{}{
			"columns": map[string]interface{}{"received_at": "boolean"},
		}
		ds := mustDataset(t, []string{"received_at"}, [][]string{{"x"}})
		_, err := checkDataTypes(ds, bad)
		require.Error(t, err)
		assert.True(t, IsValidatorFault(err))
	})
}

func TestCheckRangeCheck(t *testing.T) {
	rule := Rule{
		Name:     "tat-range",
		Kind:     KindRangeCheck,
		Severity: SeverityWarning,
		Parameters: map[string]interface{}{
			"column": "tat",
			"min":    10,
			"max":    100,
		},
	}

	ds := mustDataset(t, []string{"tat"}, [][]string{
		{"5"},   // below min
		{"50"},  // in range
		{"150"}, // above max
		{"2"},   // below min
		{"abc"}, // unparseable, ignored
	})

	violations, err := checkRangeCheck(ds, rule)
	require.NoError(t, err)
	require.Len(t, violations, 2, "below-min and above-max are separate violations")

	assert.Equal(t, []int{0, 3}, violations[0].RowIndices)
	assert.Equal(t, "< 10", violations[0].Value)
	assert.Equal(t, []int{2}, violations[1].RowIndices)
	assert.Equal(t, "> 100", violations[1].Value)

	t.Run("no bounds means nothing to check", func(t *testing.T) {
		unbounded := rule
		unbounded.Parameters = map[string]interface{}{"column": "tat"}
		violations, err := checkRangeCheck(ds, unbounded)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestCheckUniqueness(t *testing.T) {
	rule := Rule{
		Name:     "unique-ids",
		Kind:     KindUniqueness,
		Severity: SeverityError,
		Parameters: map[string]interface{}{
			"columns": []interface{}{"id"},
		},
	}

	t.Run("all duplicate group members listed", func(t *testing.T) {
		ds := mustDataset(t, []string{"id"}, [][]string{{"1"}, {"1"}, {"2"}})
		violations, err := checkUniqueness(ds, rule)
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, []int{0, 1}, violations[0].RowIndices)
	})

	t.Run("composite key", func(t *testing.T) {
		composite := rule
		composite.Parameters = map[string]interface{}{
			"columns": []interface{}{"id", "assay"},
		}
		ds := mustDataset(t,
			[]string{"id", "assay"},
			[][]string{{"1", "CBC"}, {"1", "PCR"}, {"1", "CBC"}},
		)
		violations, err := checkUniqueness(ds, composite)
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, []int{0, 2}, violations[0].RowIndices)
		assert.Equal(t, "id, assay", violations[0].Column)
	})

	t.Run("unique rows pass", func(t *testing.T) {
		ds := mustDataset(t, []string{"id"}, [][]string{{"1"}, {"2"}})
		violations, err := checkUniqueness(ds, rule)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestCheckCompleteness(t *testing.T) {
	newRule := func(threshold float64) Rule {
		return Rule{
			Name:     "complete",
			Kind:     KindCompleteness,
			Severity: SeverityError,
			Parameters: map[string]interface{}{
				"columns":   []interface{}{"value"},
				"threshold": threshold,
			},
		}
	}

	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i)}
	}
	rows[3] = []string{""}
	rows[7] = []string{"NA"}
	ds := mustDataset(t, []string{"value"}, rows)

	t.Run("fraction above threshold violates", func(t *testing.T) {
		violations, err := checkCompleteness(ds, newRule(0.1))
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, []int{3, 7}, violations[0].RowIndices)
	})

	t.Run("fraction equal to threshold is compliant", func(t *testing.T) {
		violations, err := checkCompleteness(ds, newRule(0.2))
		require.NoError(t, err)
		assert.Empty(t, violations)
	})

	t.Run("empty dataset yields no violations", func(t *testing.T) {
		empty := mustDataset(t, []string{"value"}, nil)
		violations, err := checkCompleteness(empty, newRule(0.0))
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}
