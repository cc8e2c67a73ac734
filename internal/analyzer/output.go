package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// WriteCSV renders records as a table: one row per record, a "name"
// column followed by the requested measures in order. Undefined values
// render as "UNDEFINED".
func WriteCSV(w io.Writer, measures []string, records ...*Record) error {
	cw := csv.NewWriter(w)
	header := append([]string{"name"}, measures...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Name)
		for _, m := range measures {
			row = append(row, rec.Values[m].String())
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonRow keeps measure values in column order for JSON output.
type jsonRow struct {
	Name      string              `json:"name"`
	Values    map[string]Value    `json:"values"`
	Sentences int                 `json:"sentences"`
	Skipped   []SkippedUnit       `json:"skipped,omitempty"`
	Matches   map[string][]string `json:"matches,omitempty"`
}

// WriteJSON renders records as a JSON array, restricted to the
// requested measures.
func WriteJSON(w io.Writer, measures []string, records ...*Record) error {
	rows := make([]jsonRow, 0, len(records))
	for _, rec := range records {
		vals := make(map[string]Value, len(measures))
		for _, m := range measures {
			vals[m] = rec.Values[m]
		}
		rows = append(rows, jsonRow{
			Name:      rec.Name,
			Values:    vals,
			Sentences: rec.Sentences,
			Skipped:   rec.Skipped,
			Matches:   rec.Matches,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
