package labmetrics

import (
	"sort"

	"github.com/labops/go-sdk/pkg/dataset"
)

// ErrorRateEntry is one category's error count and rate. Rate is relative
// to the total specimen count, not the error count.
type ErrorRateEntry struct {
	Category string  `json:"category"`
	Value    string  `json:"value"`
	Count    int     `json:"count"`
	Rate     float64 `json:"rate"`
}

// ErrorStats aggregates error specimens by machine and error code
type ErrorStats struct {
	ByMachine        []ErrorRateEntry `json:"by_machine"`
	ByErrorCode      []ErrorRateEntry `json:"by_error_code"`
	TotalErrors      int              `json:"total_errors"`
	TotalSpecimens   int              `json:"total_specimens"`
	OverallErrorRate float64          `json:"overall_error_rate"`
}

// ErrorMetrics computes error rate breakdowns over the dataset. Error rows
// without an error code are counted in the totals but skipped in the
// by-error-code breakdown.
func ErrorMetrics(ds *dataset.Dataset) ErrorStats {
	total := ds.NumRows()
	stats := ErrorStats{
		ByMachine:      []ErrorRateEntry{},
		ByErrorCode:    []ErrorRateEntry{},
		TotalSpecimens: total,
	}
	if total == 0 {
		return stats
	}

	machineCounts := make(map[string]int)
	codeCounts := make(map[string]int)
	for row := 0; row < total; row++ {
		if cellString(ds, ColStatus, row) != StatusError {
			continue
		}
		stats.TotalErrors++
		if machine := cellString(ds, ColMachineID, row); machine != "" {
			machineCounts[machine]++
		}
		if code := cellString(ds, ColErrorCode, row); code != "" {
			codeCounts[code]++
		}
	}

	stats.OverallErrorRate = float64(stats.TotalErrors) / float64(total)
	stats.ByMachine = rateEntries("machine_id", machineCounts, total)
	stats.ByErrorCode = rateEntries("error_code", codeCounts, total)
	return stats
}

// rateEntries converts a count map into entries sorted by value for
// deterministic output.
func rateEntries(category string, counts map[string]int, total int) []ErrorRateEntry {
	entries := make([]ErrorRateEntry, 0, len(counts))
	for value, count := range counts {
		entries = append(entries, ErrorRateEntry{
			Category: category,
			Value:    value,
			Count:    count,
			Rate:     float64(count) / float64(total),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Value < entries[j].Value })
	return entries
}

// MostCommonErrors returns the most frequent error codes, highest count
// first, ties broken by code.
func MostCommonErrors(ds *dataset.Dataset, limit int) []ErrorRateEntry {
	codeCounts := make(map[string]int)
	for row := 0; row < ds.NumRows(); row++ {
		if cellString(ds, ColStatus, row) != StatusError {
			continue
		}
		if code := cellString(ds, ColErrorCode, row); code != "" {
			codeCounts[code]++
		}
	}

	entries := rateEntries("error_code", codeCounts, max(ds.NumRows(), 1))
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
