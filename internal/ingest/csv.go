// Package ingest reads raw tabular snapshots and writes drill-down
// exports. Inbound CSVs have arbitrary headers resolved later by the
// normalizer; exports carry the fixed display columns.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// ReadCSV parses an inbound snapshot into raw rows keyed by the
// source's own headers. Short rows are padded with blanks; a row
// longer than the header is an error.
func ReadCSV(r io.Reader) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []domain.RawRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("csv line %d has %d cells, header has %d", line, len(record), len(header))
		}

		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteDisplayCSV exports drill-down rows with the fixed display
// headers.
func WriteDisplayCSV(w io.Writer, rows []domain.DisplayRow) error {
	out, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling display rows: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing display csv: %w", err)
	}
	return nil
}
