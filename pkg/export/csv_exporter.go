package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column is one ordered column of a review log table. Weight distributes
// horizontal space in the PDF rendering; non-positive weights take an equal
// share.
type Column struct {
	Name   string
	Weight float64
}

// Table is the tabular form of a repository's review log: ordered columns
// with row values aligned by position.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// CSVExporter renders review log tables as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV bytes, one record per review log row. Every row must
// carry exactly one value per column.
func (e *CSVExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Name
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(table.Columns))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
