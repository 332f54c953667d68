package usage

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadTable reads a JSON array of import records.
func ReadTable(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode usage table: %w", err)
	}
	return records, nil
}

// ReadExportCounts reads a JSON object mapping package names to their
// total export counts.
func ReadExportCounts(r io.Reader) (ExportCounts, error) {
	var counts ExportCounts
	if err := json.NewDecoder(r).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decode export counts: %w", err)
	}
	return counts, nil
}
