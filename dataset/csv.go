package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV reads a numeric CSV file into a split. The last targetCols columns
// of each row become the target vector, the rest the input vector. A header
// row is detected by a non-numeric first cell and skipped.
func LoadCSV(path string, targetCols int) (Split, error) {
	if targetCols <= 0 {
		return Split{}, fmt.Errorf("target column count must be positive, got %d", targetCols)
	}

	f, err := os.Open(path)
	if err != nil {
		return Split{}, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return Split{}, fmt.Errorf("failed to read CSV file: %v", err)
	}
	if len(records) == 0 {
		return Split{}, fmt.Errorf("CSV file %s is empty", path)
	}

	// Skip a header row if the first cell does not parse as a number
	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 32); err != nil {
		start = 1
	}
	if start >= len(records) {
		return Split{}, fmt.Errorf("CSV file %s has no data rows", path)
	}

	var split Split
	for i, record := range records[start:] {
		if len(record) <= targetCols {
			return Split{}, fmt.Errorf("row %d has %d columns, need more than %d target columns",
				i+start, len(record), targetCols)
		}

		row := make([]float32, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				return Split{}, fmt.Errorf("row %d column %d: %v", i+start, j, err)
			}
			row[j] = float32(v)
		}

		cut := len(row) - targetCols
		split.Inputs = append(split.Inputs, row[:cut])
		split.Targets = append(split.Targets, row[cut:])
	}

	return split, nil
}
