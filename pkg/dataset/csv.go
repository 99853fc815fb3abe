package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ReadCSV builds a dataset from CSV content. The first record is the header
// and becomes the column list; every following record becomes one row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv input is empty, expected a header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	d, err := New(header)
	if err != nil {
		return nil, errors.Wrap(err, "invalid csv header")
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read csv record")
		}
		if err := d.AppendRow(record); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// ReadCSVFile builds a dataset from a CSV file on disk
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}
