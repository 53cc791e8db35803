// Package importer reads netlists, dataflow matrices and seed placements.
// Problems that only affect single lines are collected as warnings; files
// that cannot be read at all are reported as errors.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/macroplace/internal/model"
)

// FlowResult holds the outcome of a flow matrix import.
type FlowResult struct {
	Flow     *model.Flow
	Names    []string
	Errors   []string
	Warnings []string
}

// OK reports whether the import produced a usable flow graph.
func (r FlowResult) OK() bool { return r.Flow != nil && len(r.Errors) == 0 }

// flowDelimiters are tried in order; the first wins ties.
var flowDelimiters = []rune{',', ';', '\t', '|'}

// DetectCSVDelimiter guesses the delimiter of a flow matrix. A candidate
// scores by how many records match the header width, with wider headers
// breaking ties. Comma is returned when nothing splits the header.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range flowDelimiters {
		if score := delimiterScore(data, delim); score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func delimiterScore(data []byte, delim rune) int {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 || len(records[0]) < 2 {
		return 0
	}
	width := len(records[0])
	matching := 0
	for _, rec := range records {
		if len(rec) == width {
			matching++
		}
	}
	return matching*10 + width
}

// ImportFlow dispatches on the file extension: .xlsx/.xlsm go through
// excelize, everything else is read as delimited text.
func ImportFlow(path string, threshold float64) FlowResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportFlowExcel(path, threshold)
	default:
		return ImportFlowCSV(path, threshold)
	}
}

// ImportFlowCSV imports a macro-to-macro flow matrix from a delimited file.
// The first row holds the column names, each further row a row name
// followed by one value per column.
func ImportFlowCSV(path string, threshold float64) FlowResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FlowResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return FlowResult{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	res := ImportFlowCSVFromReader(bytes.NewReader(data), delimiter, threshold)
	res.Warnings = append(warnings, res.Warnings...)
	return res
}

// ImportFlowCSVFromReader imports a flow matrix with a known delimiter.
func ImportFlowCSVFromReader(reader io.Reader, delimiter rune, threshold float64) FlowResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return FlowResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return flowFromRows(records, "Line", threshold)
}

// ImportFlowExcel imports a flow matrix from the first sheet of a workbook.
func ImportFlowExcel(path string, threshold float64) FlowResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return FlowResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return FlowResult{Errors: []string{"Excel file has no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return FlowResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return flowFromRows(rows, "Row", threshold)
}

// flowFromRows is the shared matrix logic for CSV and Excel data. Rows
// are matched to columns by name; the value at (row a, column b) is the
// flow from a to b.
func flowFromRows(rows [][]string, rowPrefix string, threshold float64) FlowResult {
	result := FlowResult{}
	if len(rows) < 2 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	header := rows[0]
	names := make([]string, 0, len(header))
	column := make(map[string]int, len(header))
	// cols maps a header position to its matrix column, -1 when ignored.
	cols := make([]int, len(header))
	for j, cell := range header {
		cols[j] = -1
		name := strings.TrimSpace(cell)
		if j == 0 || name == "" {
			continue
		}
		if _, dup := column[name]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Duplicate column %q, keeping the first", name))
			continue
		}
		column[name] = len(names)
		cols[j] = len(names)
		names = append(names, name)
	}
	if len(names) == 0 {
		result.Errors = append(result.Errors, "Header row has no macro names")
		return result
	}

	matrix := make([][]float64, len(names))
	for i := range matrix {
		matrix[i] = make([]float64, len(names))
	}

	seen := make(map[string]bool, len(names))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		name := strings.TrimSpace(row[0])
		r, ok := column[name]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %q is not a column, skipped", rowLabel, name))
			continue
		}
		seen[name] = true

		for j := 1; j < len(header); j++ {
			c := cols[j]
			if c < 0 {
				continue
			}
			raw := ""
			if j < len(row) {
				raw = strings.TrimSpace(row[j])
			}
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid value '%s'", rowLabel, raw))
				continue
			}
			matrix[r][c] = v
		}
	}

	for _, name := range names {
		if !seen[name] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("No row for %q, treating it as zero", name))
		}
	}

	result.Names = names
	result.Flow = model.FlowFromMatrix(names, matrix, threshold)
	return result
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
