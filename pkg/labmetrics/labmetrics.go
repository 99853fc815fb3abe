// Package labmetrics computes operational metrics over a specimen dataset:
// turnaround time percentiles, throughput, error rates and SLA breach
// detection. All functions are pure projections over the dataset; nothing
// here mutates it.
package labmetrics

import (
	"time"

	"github.com/labops/go-sdk/pkg/dataset"
)

// Column names of the specimen processing table
const (
	ColSpecimenID  = "specimen_id"
	ColReceivedAt  = "received_at"
	ColProcessedAt = "processed_at"
	ColStatus      = "status"
	ColAssay       = "assay"
	ColMachineID   = "machine_id"
	ColErrorCode   = "error_code"
)

// Status values of the specimen processing table
const (
	StatusCompleted = "COMPLETED"
	StatusError     = "ERROR"
)

// Grain selects the time bucket size for time series groupings
type Grain string

const (
	// GrainHour buckets per hour
	GrainHour Grain = "hour"
	// GrainDay buckets per day
	GrainDay Grain = "day"
)

// floor truncates a timestamp to the start of its grain bucket
func (g Grain) floor(t time.Time) time.Time {
	if g == GrainDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return t.Truncate(time.Hour)
}

// cellString reads a cell as a string, returning "" when absent or missing
func cellString(ds *dataset.Dataset, column string, row int) string {
	cell, ok := ds.Cell(column, row)
	if !ok || cell.IsMissing() {
		return ""
	}
	return cell.String()
}

// completedRow reports whether the row describes a completed specimen
func completedRow(ds *dataset.Dataset, row int) bool {
	return cellString(ds, ColStatus, row) == StatusCompleted
}

// rowTATMinutes computes the row's turnaround time in minutes. The second
// return value is false when either timestamp fails to parse or the TAT is
// negative.
func rowTATMinutes(ds *dataset.Dataset, row int) (float64, bool) {
	receivedCell, ok := ds.Cell(ColReceivedAt, row)
	if !ok {
		return 0, false
	}
	processedCell, ok := ds.Cell(ColProcessedAt, row)
	if !ok {
		return 0, false
	}
	received, ok := receivedCell.Time()
	if !ok {
		return 0, false
	}
	processed, ok := processedCell.Time()
	if !ok {
		return 0, false
	}
	minutes := processed.Sub(received).Minutes()
	if minutes < 0 {
		return 0, false
	}
	return minutes, true
}
