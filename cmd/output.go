package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// openOutput returns stdout for "" or "-", otherwise a created file.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeColumns writes equal-length float columns as CSV with a header row.
// Values are printed with the shortest representation that round-trips.
func writeColumns(w io.Writer, header []string, cols ...[]float64) error {
	if len(header) != len(cols) {
		return fmt.Errorf("header has %d names for %d columns", len(header), len(cols))
	}
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	for i, c := range cols {
		if len(c) != rows {
			return fmt.Errorf("column %s has %d rows, want %d", header[i], len(c), rows)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(cols))
	for r := 0; r < rows; r++ {
		for c := range cols {
			record[c] = strconv.FormatFloat(cols[c][r], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// indices returns 0..n-1 as floats, for an index column.
func indices(n int) []float64 {
	idx := make([]float64, n)
	for i := range idx {
		idx[i] = float64(i)
	}
	return idx
}
