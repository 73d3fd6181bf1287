// Package source reads alert definition rows from the threshold table.
// Supported formats are xlsx (the format the tables are authored in) and
// csv (convenient for fixtures and exports).
package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column layout of the definition table. Only Name and the two threshold
// columns feed the engine; Category and Insights are documentation.
const (
	colName = iota
	colCategory
	colLowThreshold
	colHighThreshold
	colInsights
)

// AlertRow is one row of the definition table. Thresholds are the raw cell
// text; empty means no alert of that priority.
type AlertRow struct {
	Name          string
	Category      string
	LowThreshold  string
	HighThreshold string
	// Line is the 1-based row number in the source file, for error reporting.
	Line int
}

// ReadFile loads alert definition rows from path, dispatching on the file
// extension. The header row is skipped and rows without a name are ignored.
func ReadFile(path string) ([]AlertRow, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return readExcel(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported definition table format %q (want .xlsx or .csv)", ext)
	}
}

func readExcel(path string) ([]AlertRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s contains no sheets", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rowsFromRecords(records), nil
}

func readCSV(path string) ([]AlertRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rowsFromRecords(records), nil
}

func rowsFromRecords(records [][]string) []AlertRow {
	var rows []AlertRow
	for i, record := range records {
		if i == 0 {
			continue // header
		}
		name := strings.TrimSpace(cell(record, colName))
		if name == "" {
			continue
		}
		rows = append(rows, AlertRow{
			Name:          name,
			Category:      strings.TrimSpace(cell(record, colCategory)),
			LowThreshold:  strings.TrimSpace(cell(record, colLowThreshold)),
			HighThreshold: strings.TrimSpace(cell(record, colHighThreshold)),
			Line:          i + 1,
		})
	}
	return rows
}

// cell returns column idx of a record, tolerating short rows (trailing
// empty cells are omitted by both csv and excelize).
func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}
