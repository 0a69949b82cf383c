package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// readCSV parses numeric features followed by a label in the last column.
// A first row with a non-numeric feature is taken as a header and skipped.
func readCSV(r io.Reader) ([][]float64, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var (
		X [][]float64
		Y []string
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("line %d: want at least one feature and a label", line)
		}

		row := make([]float64, len(record)-1)
		var parseErr error
		for i, val := range record[:len(record)-1] {
			if row[i], parseErr = strconv.ParseFloat(val, 64); parseErr != nil {
				break
			}
		}
		if parseErr != nil {
			if line == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("line %d: %w", line, parseErr)
		}

		X = append(X, row)
		Y = append(Y, record[len(record)-1])
	}
	return X, Y, nil
}

func readCSVFile(path string) ([][]float64, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	X, Y, err := readCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return X, Y, nil
}
