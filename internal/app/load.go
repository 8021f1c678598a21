package app

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/vk/metafeatgo/pkg/dataset"
)

// loadCSV reads a header-row CSV file into a feature table plus, when
// targetColumn is non-empty, the target series. A column whose every
// non-empty cell parses as a float becomes numeric with empty cells as NaN;
// anything else becomes categorical with empty cells as the missing marker.
func loadCSV(path, targetColumn string) (*dataset.Table, *dataset.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("dataset %s has no header row", path)
	}
	header := records[0]
	rows := records[1:]

	var target *dataset.Series
	targetFound := false
	var cols []dataset.Column
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j >= len(row) {
				return nil, nil, fmt.Errorf("row %d of %s has %d fields, header has %d",
					i+2, path, len(row), len(header))
			}
			cells[i] = row[j]
		}
		col := buildColumn(name, cells)
		if name == targetColumn && targetColumn != "" {
			target = &dataset.Series{Name: col.Name, Numeric: col.Numeric, Values: col.Values}
			targetFound = true
			continue
		}
		cols = append(cols, col)
	}
	if targetColumn != "" && !targetFound {
		return nil, nil, fmt.Errorf("target column %q not found in %s", targetColumn, path)
	}

	table, err := dataset.NewTable(cols)
	if err != nil {
		return nil, nil, fmt.Errorf("building dataset table: %w", err)
	}
	return table, target, nil
}

func buildColumn(name string, cells []string) dataset.Column {
	numeric := make([]float64, len(cells))
	isNumeric := true
	for i, cell := range cells {
		if cell == "" {
			numeric[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			isNumeric = false
			break
		}
		numeric[i] = v
	}
	if isNumeric {
		return dataset.Column{Name: name, Numeric: numeric}
	}
	return dataset.Column{Name: name, Values: cells}
}
