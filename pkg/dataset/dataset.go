// Package dataset provides the in-memory tabular dataset consumed by the
// data quality engine and the operational metrics calculators. A Dataset is
// a finite, ordered table: rows are addressed by 0-based position, columns
// by name. Cell values are untyped strings; consumers interpret them via the
// Cell parsing helpers.
package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

// Dataset is an ordered, finite, in-memory table. It is built once and then
// treated as read-only; nothing in this module mutates a dataset after
// construction.
type Dataset struct {
	columns []string
	index   map[string]int
	cells   [][]Cell // column-major: cells[col][row]
	rows    int
}

// New creates an empty dataset with the given column names
func New(columns []string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New("dataset requires at least one column")
	}
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("duplicate column name: %s", name)
		}
		index[name] = i
	}
	cells := make([][]Cell, len(columns))
	return &Dataset{
		columns: append([]string(nil), columns...),
		index:   index,
		cells:   cells,
	}, nil
}

// FromRecords creates a dataset from a header and row slices
func FromRecords(columns []string, rows [][]string) (*Dataset, error) {
	d, err := New(columns)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := d.AppendRow(row); err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}
	return d, nil
}

// AppendRow adds one row of raw values. The value count must match the
// column count.
func (d *Dataset) AppendRow(values []string) error {
	if len(values) != len(d.columns) {
		return fmt.Errorf("row has %d values, dataset has %d columns", len(values), len(d.columns))
	}
	for i, v := range values {
		d.cells[i] = append(d.cells[i], newCell(v))
	}
	d.rows++
	return nil
}

// Columns returns the column names in their original order
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn reports whether the named column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// NumRows returns the number of rows in the dataset
func (d *Dataset) NumRows() int {
	return d.rows
}

// NumColumns returns the number of columns in the dataset
func (d *Dataset) NumColumns() int {
	return len(d.columns)
}

// Column returns all cells of the named column in row order. The returned
// slice is shared with the dataset and must not be modified.
func (d *Dataset) Column(name string) ([]Cell, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cells[i], true
}

// Cell returns the cell at the given column and row position
func (d *Dataset) Cell(column string, row int) (Cell, bool) {
	i, ok := d.index[column]
	if !ok || row < 0 || row >= d.rows {
		return Cell{}, false
	}
	return d.cells[i][row], true
}
