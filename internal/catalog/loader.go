package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadCSV reads a master or routing table from a local CSV file. Ragged
// rows are tolerated; the index builder handles short rows per cell.
func LoadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return rows, nil
}

// RowsFromValues converts the loosely typed row values returned by the
// spreadsheet API into the string rows the index builder consumes.
func RowsFromValues(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, raw := range values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows
}
