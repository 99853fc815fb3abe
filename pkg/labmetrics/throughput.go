package labmetrics

import (
	"sort"
	"time"

	"github.com/labops/go-sdk/pkg/dataset"
)

// ThroughputPoint is one time bucket's completed-specimen count
type ThroughputPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// ThroughputResult is a completed-specimen time series at a given grain
type ThroughputResult struct {
	Data  []ThroughputPoint `json:"data"`
	Grain Grain             `json:"grain"`
}

// bucketCompleted counts completed specimens per grain bucket, optionally
// keyed by a grouping column value.
func bucketCompleted(ds *dataset.Dataset, grain Grain, groupCol string) map[string]map[time.Time]int {
	buckets := make(map[string]map[time.Time]int)
	for row := 0; row < ds.NumRows(); row++ {
		if !completedRow(ds, row) {
			continue
		}
		cell, ok := ds.Cell(ColProcessedAt, row)
		if !ok {
			continue
		}
		processed, ok := cell.Time()
		if !ok {
			continue
		}
		group := ""
		if groupCol != "" {
			group = cellString(ds, groupCol, row)
			if group == "" {
				continue
			}
		}
		if buckets[group] == nil {
			buckets[group] = make(map[time.Time]int)
		}
		buckets[group][grain.floor(processed)]++
	}
	return buckets
}

// sortedPoints converts a bucket map into a time-ordered point series
func sortedPoints(counts map[time.Time]int) []ThroughputPoint {
	points := make([]ThroughputPoint, 0, len(counts))
	for ts, count := range counts {
		points = append(points, ThroughputPoint{Timestamp: ts, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points
}

// Throughput counts completed specimens per time bucket
func Throughput(ds *dataset.Dataset, grain Grain) ThroughputResult {
	result := ThroughputResult{Data: []ThroughputPoint{}, Grain: grain}
	buckets := bucketCompleted(ds, grain, "")
	if counts, ok := buckets[""]; ok {
		result.Data = sortedPoints(counts)
	}
	return result
}

// ThroughputByAssay counts completed specimens per time bucket and assay
func ThroughputByAssay(ds *dataset.Dataset, grain Grain) map[string][]ThroughputPoint {
	return groupedThroughput(ds, grain, ColAssay)
}

// ThroughputByMachine counts completed specimens per time bucket and machine
func ThroughputByMachine(ds *dataset.Dataset, grain Grain) map[string][]ThroughputPoint {
	return groupedThroughput(ds, grain, ColMachineID)
}

func groupedThroughput(ds *dataset.Dataset, grain Grain, groupCol string) map[string][]ThroughputPoint {
	out := make(map[string][]ThroughputPoint)
	for group, counts := range bucketCompleted(ds, grain, groupCol) {
		out[group] = sortedPoints(counts)
	}
	return out
}

// TotalThroughputOn counts specimens completed on the given day
func TotalThroughputOn(ds *dataset.Dataset, day time.Time) int {
	target := GrainDay.floor(day)
	total := 0
	for row := 0; row < ds.NumRows(); row++ {
		if !completedRow(ds, row) {
			continue
		}
		cell, ok := ds.Cell(ColProcessedAt, row)
		if !ok {
			continue
		}
		processed, ok := cell.Time()
		if !ok {
			continue
		}
		if GrainDay.floor(processed).Equal(target) {
			total++
		}
	}
	return total
}
