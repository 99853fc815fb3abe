package labmetrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops/go-sdk/pkg/dataset"
)

var specimenColumns = []string{
	ColSpecimenID, ColReceivedAt, ColProcessedAt, ColStatus, ColAssay, ColMachineID, ColErrorCode,
}

func specimenDataset(t *testing.T, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(specimenColumns, rows)
	require.NoError(t, err)
	return ds
}

func TestTurnaroundTime(t *testing.T) {
	t.Run("percentiles over completed rows", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
			{"S2", "2026-01-05 08:00", "2026-01-05 10:00", "COMPLETED", "CBC", "M1", ""},
			{"S3", "2026-01-05 08:00", "2026-01-05 11:00", "COMPLETED", "CBC", "M2", ""},
			{"S4", "2026-01-05 08:00", "2026-01-05 12:00", "PENDING", "CBC", "M2", ""},
		})

		result := TurnaroundTime(ds, "")
		assert.Equal(t, 3, result.TotalSpecimens)
		assert.InDelta(t, 120.0, result.P50, 0.001)
		assert.InDelta(t, 168.0, result.P90, 0.001)
		assert.InDelta(t, 178.8, result.P99, 0.001)
	})

	t.Run("assay filter", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
			{"S2", "2026-01-05 08:00", "2026-01-05 12:00", "COMPLETED", "LIPID", "M1", ""},
		})

		result := TurnaroundTime(ds, "LIPID")
		assert.Equal(t, 1, result.TotalSpecimens)
		assert.InDelta(t, 240.0, result.P50, 0.001)
		assert.Equal(t, "LIPID", result.Assay)
	})

	t.Run("negative and unparseable turnaround dropped", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 10:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
			{"S2", "not a time", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
			{"S3", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
		})

		result := TurnaroundTime(ds, "")
		assert.Equal(t, 1, result.TotalSpecimens)
		assert.InDelta(t, 60.0, result.P50, 0.001)
	})

	t.Run("no completed rows yields zero result", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "", "PENDING", "CBC", "M1", ""},
		})

		result := TurnaroundTime(ds, "")
		assert.Zero(t, result.TotalSpecimens)
		assert.Zero(t, result.P99)
	})
}

func TestTurnaroundTimeByAssay(t *testing.T) {
	ds := specimenDataset(t, [][]string{
		{"S1", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
		{"S2", "2026-01-05 08:00", "2026-01-05 10:00", "COMPLETED", "LIPID", "M1", ""},
		{"S3", "2026-01-05 08:00", "2026-01-05 11:00", "COMPLETED", "CBC", "M2", ""},
	})

	results := TurnaroundTimeByAssay(ds)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results["CBC"].TotalSpecimens)
	assert.InDelta(t, 120.0, results["CBC"].P50, 0.001)
	assert.Equal(t, 1, results["LIPID"].TotalSpecimens)
}

func TestThroughput(t *testing.T) {
	ds := specimenDataset(t, [][]string{
		{"S1", "2026-01-05 08:00", "2026-01-05 09:10", "COMPLETED", "CBC", "M1", ""},
		{"S2", "2026-01-05 08:00", "2026-01-05 09:40", "COMPLETED", "CBC", "M1", ""},
		{"S3", "2026-01-05 08:00", "2026-01-05 10:05", "COMPLETED", "LIPID", "M2", ""},
		{"S4", "2026-01-05 08:00", "2026-01-06 09:00", "COMPLETED", "CBC", "M2", ""},
		{"S5", "2026-01-05 08:00", "2026-01-05 09:50", "ERROR", "CBC", "M1", "E_CLOT"},
	})

	t.Run("hourly buckets", func(t *testing.T) {
		result := Throughput(ds, GrainHour)
		require.Len(t, result.Data, 3)
		assert.Equal(t, 2, result.Data[0].Count)
		assert.Equal(t, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), result.Data[0].Timestamp)
		assert.Equal(t, 1, result.Data[1].Count)
		assert.Equal(t, 1, result.Data[2].Count)
	})

	t.Run("daily buckets", func(t *testing.T) {
		result := Throughput(ds, GrainDay)
		require.Len(t, result.Data, 2)
		assert.Equal(t, 3, result.Data[0].Count)
		assert.Equal(t, 1, result.Data[1].Count)
	})

	t.Run("by assay", func(t *testing.T) {
		byAssay := ThroughputByAssay(ds, GrainDay)
		require.Len(t, byAssay, 2)
		assert.Equal(t, 2, byAssay["CBC"][0].Count)
		assert.Equal(t, 1, byAssay["LIPID"][0].Count)
	})

	t.Run("by machine", func(t *testing.T) {
		byMachine := ThroughputByMachine(ds, GrainHour)
		require.Len(t, byMachine, 2)
		assert.Len(t, byMachine["M1"], 1)
		assert.Len(t, byMachine["M2"], 2)
	})

	t.Run("total on day", func(t *testing.T) {
		assert.Equal(t, 3, TotalThroughputOn(ds, time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)))
		assert.Equal(t, 1, TotalThroughputOn(ds, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)))
		assert.Zero(t, TotalThroughputOn(ds, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)))
	})
}

func TestErrorMetrics(t *testing.T) {
	t.Run("breakdowns by machine and code", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
			{"S2", "2026-01-05 08:00", "", "ERROR", "CBC", "M1", "E_CLOT"},
			{"S3", "2026-01-05 08:00", "", "ERROR", "CBC", "M2", "E_CLOT"},
			{"S4", "2026-01-05 08:00", "", "ERROR", "CBC", "M2", "E_QNS"},
		})

		stats := ErrorMetrics(ds)
		assert.Equal(t, 3, stats.TotalErrors)
		assert.Equal(t, 4, stats.TotalSpecimens)
		assert.InDelta(t, 0.75, stats.OverallErrorRate, 0.001)

		require.Len(t, stats.ByMachine, 2)
		assert.Equal(t, "M1", stats.ByMachine[0].Value)
		assert.Equal(t, 1, stats.ByMachine[0].Count)
		assert.Equal(t, "M2", stats.ByMachine[1].Value)
		assert.Equal(t, 2, stats.ByMachine[1].Count)
		assert.InDelta(t, 0.5, stats.ByMachine[1].Rate, 0.001)

		require.Len(t, stats.ByErrorCode, 2)
		assert.Equal(t, "E_CLOT", stats.ByErrorCode[0].Value)
		assert.Equal(t, 2, stats.ByErrorCode[0].Count)
	})

	t.Run("error row without code counted in totals only", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "", "ERROR", "CBC", "M1", ""},
		})

		stats := ErrorMetrics(ds)
		assert.Equal(t, 1, stats.TotalErrors)
		assert.Empty(t, stats.ByErrorCode)
	})

	t.Run("empty dataset", func(t *testing.T) {
		ds, err := dataset.New(specimenColumns)
		require.NoError(t, err)

		stats := ErrorMetrics(ds)
		assert.Zero(t, stats.TotalErrors)
		assert.Zero(t, stats.OverallErrorRate)
		assert.NotNil(t, stats.ByMachine)
	})
}

func TestMostCommonErrors(t *testing.T) {
	ds := specimenDataset(t, [][]string{
		{"S1", "2026-01-05 08:00", "", "ERROR", "CBC", "M1", "E_QNS"},
		{"S2", "2026-01-05 08:00", "", "ERROR", "CBC", "M1", "E_CLOT"},
		{"S3", "2026-01-05 08:00", "", "ERROR", "CBC", "M2", "E_CLOT"},
		{"S4", "2026-01-05 08:00", "", "ERROR", "CBC", "M2", "E_HEMOLYSIS"},
	})

	top := MostCommonErrors(ds, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "E_CLOT", top[0].Value)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, "E_HEMOLYSIS", top[1].Value)
}

func TestSLAMetrics(t *testing.T) {
	t.Run("strict threshold", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "2026-01-05 12:00", "COMPLETED", "CBC", "M1", ""},
			{"S2", "2026-01-05 08:00", "2026-01-05 12:01", "COMPLETED", "CBC", "M1", ""},
			{"S3", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M2", ""},
		})

		stats := SLAMetrics(ds, 4)
		// exactly 4h is compliant, 4h01m is a breach
		assert.Equal(t, 1, stats.BreachCount)
		assert.Equal(t, 3, stats.TotalCompleted)
		assert.InDelta(t, 1.0/3.0, stats.BreachRate, 0.001)
		require.Len(t, stats.SampleBreaches, 1)
		assert.Equal(t, "S2", stats.SampleBreaches[0].SpecimenID)
		assert.InDelta(t, 241.0, stats.SampleBreaches[0].TurnaroundMinutes, 0.001)
	})

	t.Run("sample breaches capped at twenty", func(t *testing.T) {
		var rows [][]string
		for i := 0; i < 30; i++ {
			rows = append(rows, []string{
				"S" + string(rune('A'+i%26)), "2026-01-05 00:00", "2026-01-05 10:00", "COMPLETED", "CBC", "M1", "",
			})
		}
		ds := specimenDataset(t, rows)

		stats := SLAMetrics(ds, 4)
		assert.Equal(t, 30, stats.BreachCount)
		assert.Len(t, stats.SampleBreaches, 20)
	})

	t.Run("no completed rows", func(t *testing.T) {
		ds := specimenDataset(t, [][]string{
			{"S1", "2026-01-05 08:00", "", "PENDING", "CBC", "M1", ""},
		})

		stats := SLAMetrics(ds, 4)
		assert.Zero(t, stats.BreachCount)
		assert.Zero(t, stats.BreachRate)
		assert.NotNil(t, stats.SampleBreaches)
	})
}

func TestSLABreachRates(t *testing.T) {
	ds := specimenDataset(t, [][]string{
		{"S1", "2026-01-05 08:00", "2026-01-05 14:00", "COMPLETED", "CBC", "M1", ""},
		{"S2", "2026-01-05 08:00", "2026-01-05 09:00", "COMPLETED", "CBC", "M1", ""},
		{"S3", "2026-01-05 08:00", "2026-01-05 15:00", "COMPLETED", "LIPID", "M2", ""},
	})

	t.Run("by assay", func(t *testing.T) {
		rates := SLABreachRateByAssay(ds, 4)
		require.Len(t, rates, 2)
		assert.Equal(t, 1, rates["CBC"].Breaches)
		assert.Equal(t, 2, rates["CBC"].Total)
		assert.InDelta(t, 0.5, rates["CBC"].Rate, 0.001)
		assert.InDelta(t, 1.0, rates["LIPID"].Rate, 0.001)
	})

	t.Run("by machine", func(t *testing.T) {
		rates := SLABreachRateByMachine(ds, 4)
		assert.Equal(t, []string{"M1", "M2"}, GroupNames(rates))
		assert.Equal(t, 1, rates["M2"].Breaches)
	})
}
