package labmetrics

import (
	"sort"

	"github.com/labops/go-sdk/pkg/dataset"
)

// sampleBreachLimit caps the number of example breaches carried in SLAStats
const sampleBreachLimit = 20

// SLABreach is one specimen that exceeded the SLA turnaround
type SLABreach struct {
	SpecimenID        string  `json:"specimen_id"`
	Assay             string  `json:"assay"`
	MachineID         string  `json:"machine_id"`
	TurnaroundMinutes float64 `json:"turnaround_time_minutes"`
	ReceivedAt        string  `json:"received_at"`
	ProcessedAt       string  `json:"processed_at"`
}

// SLAStats summarizes SLA compliance over completed specimens
type SLAStats struct {
	BreachCount    int         `json:"breach_count"`
	TotalCompleted int         `json:"total_completed"`
	BreachRate     float64     `json:"breach_rate"`
	SampleBreaches []SLABreach `json:"sample_breaches"`
}

// BreachRate is one group's SLA breach count and rate
type BreachRate struct {
	Breaches int     `json:"breaches"`
	Total    int     `json:"total"`
	Rate     float64 `json:"breach_rate"`
}

// SLAMetrics computes SLA breach statistics. A breach is a completed
// specimen whose turnaround is strictly greater than slaHours. Up to 20
// sample breach records are included for display.
func SLAMetrics(ds *dataset.Dataset, slaHours float64) SLAStats {
	stats := SLAStats{SampleBreaches: []SLABreach{}}
	thresholdMinutes := slaHours * 60

	for row := 0; row < ds.NumRows(); row++ {
		if !completedRow(ds, row) {
			continue
		}
		minutes, ok := rowTATMinutes(ds, row)
		if !ok {
			continue
		}
		stats.TotalCompleted++
		if minutes <= thresholdMinutes {
			continue
		}
		stats.BreachCount++
		if len(stats.SampleBreaches) < sampleBreachLimit {
			stats.SampleBreaches = append(stats.SampleBreaches, SLABreach{
				SpecimenID:        cellString(ds, ColSpecimenID, row),
				Assay:             cellString(ds, ColAssay, row),
				MachineID:         cellString(ds, ColMachineID, row),
				TurnaroundMinutes: minutes,
				ReceivedAt:        cellString(ds, ColReceivedAt, row),
				ProcessedAt:       cellString(ds, ColProcessedAt, row),
			})
		}
	}

	if stats.TotalCompleted > 0 {
		stats.BreachRate = float64(stats.BreachCount) / float64(stats.TotalCompleted)
	}
	return stats
}

// SLABreachRateByAssay computes per-assay breach rates
func SLABreachRateByAssay(ds *dataset.Dataset, slaHours float64) map[string]BreachRate {
	return groupedBreachRates(ds, slaHours, ColAssay)
}

// SLABreachRateByMachine computes per-machine breach rates
func SLABreachRateByMachine(ds *dataset.Dataset, slaHours float64) map[string]BreachRate {
	return groupedBreachRates(ds, slaHours, ColMachineID)
}

func groupedBreachRates(ds *dataset.Dataset, slaHours float64, groupCol string) map[string]BreachRate {
	thresholdMinutes := slaHours * 60
	rates := make(map[string]BreachRate)

	for row := 0; row < ds.NumRows(); row++ {
		if !completedRow(ds, row) {
			continue
		}
		minutes, ok := rowTATMinutes(ds, row)
		if !ok {
			continue
		}
		group := cellString(ds, groupCol, row)
		if group == "" {
			continue
		}
		entry := rates[group]
		entry.Total++
		if minutes > thresholdMinutes {
			entry.Breaches++
		}
		rates[group] = entry
	}

	for group, entry := range rates {
		entry.Rate = float64(entry.Breaches) / float64(entry.Total)
		rates[group] = entry
	}
	return rates
}

// GroupNames returns a group-rate map's keys in sorted order, for stable
// display.
func GroupNames(rates map[string]BreachRate) []string {
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
