// Package export writes target table rows to CSV or JSON, mirroring the
// columns they came from: an id header followed by the name header for CSV,
// and an array of objects for JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"dbseed/internal/storage"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Write encodes rows to w in the given format. Column headers come from the
// caller so the output matches the configured table.
func Write(w io.Writer, f Format, idHeader, nameHeader string, rows []storage.Row) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, idHeader, nameHeader, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func writeCSV(w io.Writer, idHeader, nameHeader string, rows []storage.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{idHeader, nameHeader}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{strconv.FormatInt(r.ID, 10), r.Name}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, rows []storage.Row) error {
	if rows == nil {
		rows = []storage.Row{} // encode as [] rather than null
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
