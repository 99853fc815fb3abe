package dataset

import (
	"strconv"
	"strings"
	"time"
)

// missingMarkers are raw values treated as missing, matching the markers the
// upstream CSV exports use for nulls.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// timeLayouts are tried in order when parsing a cell as a timestamp
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Cell is a single table value: the raw string plus a missing flag
type Cell struct {
	raw     string
	missing bool
}

func newCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	return Cell{
		raw:     trimmed,
		missing: missingMarkers[strings.ToLower(trimmed)],
	}
}

// NewCell creates a cell from a raw value, detecting missing-value markers
func NewCell(raw string) Cell {
	return newCell(raw)
}

// IsMissing reports whether the cell holds no usable value
func (c Cell) IsMissing() bool {
	return c.missing
}

// String returns the raw cell value
func (c Cell) String() string {
	return c.raw
}

// Float parses the cell as a number. Missing cells and non-numeric values
// return false.
func (c Cell) Float() (float64, bool) {
	if c.missing {
		return 0, false
	}
	f, err := strconv.ParseFloat(c.raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Time parses the cell as a timestamp, trying the supported layouts in
// order. Missing cells and unparseable values return false.
func (c Cell) Time() (time.Time, bool) {
	if c.missing {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, c.raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
