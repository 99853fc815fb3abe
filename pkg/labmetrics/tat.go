package labmetrics

import (
	"sort"

	"github.com/labops/go-sdk/pkg/dataset"
)

// TATResult holds turnaround time percentiles for completed specimens
type TATResult struct {
	P50            float64 `json:"p50"`
	P90            float64 `json:"p90"`
	P99            float64 `json:"p99"`
	Assay          string  `json:"assay,omitempty"`
	TotalSpecimens int     `json:"total_specimens"`
}

// quantile computes a linear-interpolation quantile over sorted values
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// completedTATs collects valid turnaround times of completed specimens,
// optionally filtered by assay.
func completedTATs(ds *dataset.Dataset, assay string) []float64 {
	var tats []float64
	for row := 0; row < ds.NumRows(); row++ {
		if !completedRow(ds, row) {
			continue
		}
		if assay != "" && cellString(ds, ColAssay, row) != assay {
			continue
		}
		if minutes, ok := rowTATMinutes(ds, row); ok {
			tats = append(tats, minutes)
		}
	}
	return tats
}

// TurnaroundTime computes P50/P90/P99 turnaround time in minutes over
// completed specimens. An empty assay means no filter. Rows with
// unparseable or negative turnaround are dropped; with no valid rows all
// percentiles are zero.
func TurnaroundTime(ds *dataset.Dataset, assay string) TATResult {
	tats := completedTATs(ds, assay)
	if len(tats) == 0 {
		return TATResult{Assay: assay}
	}
	sort.Float64s(tats)
	return TATResult{
		P50:            quantile(tats, 0.50),
		P90:            quantile(tats, 0.90),
		P99:            quantile(tats, 0.99),
		Assay:          assay,
		TotalSpecimens: len(tats),
	}
}

// TurnaroundTimeByAssay computes turnaround percentiles for every assay
// present in the dataset.
func TurnaroundTimeByAssay(ds *dataset.Dataset) map[string]TATResult {
	seen := make(map[string]bool)
	results := make(map[string]TATResult)
	for row := 0; row < ds.NumRows(); row++ {
		assay := cellString(ds, ColAssay, row)
		if assay == "" || seen[assay] {
			continue
		}
		seen[assay] = true
		results[assay] = TurnaroundTime(ds, assay)
	}
	return results
}
