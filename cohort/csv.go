package cohort

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a cohort from a tabular file. The header must contain a
// column for every requested feature; extra columns are ignored and column
// order does not matter.
func LoadCSV(path string, features []string) (*Cohort, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cohort file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read cohort header: %w", err)
	}

	columns := make([]int, len(features))
	for fi, name := range features {
		columns[fi] = -1
		for hi, col := range header {
			if strings.TrimSpace(col) == name {
				columns[fi] = hi
				break
			}
		}
		if columns[fi] == -1 {
			return nil, fmt.Errorf("cohort file missing column %q", name)
		}
	}

	var rows [][]float64
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read cohort line %d: %w", line+1, err)
		}
		line++
		row := make([]float64, len(features))
		for fi, hi := range columns {
			value, err := strconv.ParseFloat(strings.TrimSpace(record[hi]), 64)
			if err != nil {
				return nil, fmt.Errorf("cohort line %d column %q: %w", line, features[fi], err)
			}
			row[fi] = value
		}
		rows = append(rows, row)
	}

	return New(features, rows)
}
