// Package excel reads header-keyed tables out of range planning workbooks.
package excel

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds how far down a sheet the header row may sit.
const headerScanRows = 10

var ErrMissingColumns = errors.New("required columns not found")

// Parser wraps an open workbook.
type Parser struct {
	file *excelize.File
}

// NewParserFromReader creates a parser from an io.Reader
func NewParserFromReader(r io.Reader) (*Parser, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return &Parser{file: f}, nil
}

// NewParserFromFile creates a parser from a file path
func NewParserFromFile(path string) (*Parser, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return &Parser{file: f}, nil
}

// Close closes the Excel file
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// GetSheetList returns all sheet names
func (p *Parser) GetSheetList() []string {
	return p.file.GetSheetList()
}

// Table is one sheet read as rows keyed by header text.
type Table struct {
	Sheet     string
	HeaderRow int
	Headers   []string
	Rows      []Row
}

// Row is one data row. Number is the 1-based sheet row.
type Row struct {
	Number int
	cells  map[string]string
}

// ReadTable reads sheetName (the first sheet when empty). The header row is the
// first of the top rows that contains every required column; with no required
// columns it is row 1. Blank rows are skipped.
func (p *Parser) ReadTable(sheetName string, required ...string) (*Table, error) {
	if sheetName == "" {
		sheets := p.file.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := p.file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %q: %w", sheetName, err)
	}

	headerIdx, err := findHeaderRow(rows, required)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	table := &Table{Sheet: sheetName, HeaderRow: headerIdx + 1}
	if headerIdx < 0 {
		return table, nil
	}

	header := rows[headerIdx]
	for _, h := range header {
		table.Headers = append(table.Headers, strings.TrimSpace(h))
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		cells := make(map[string]string, len(header))
		blank := true
		for col, h := range header {
			key := normalizeHeader(h)
			if key == "" || col >= len(rows[i]) {
				continue
			}
			v := strings.TrimSpace(rows[i][col])
			if v != "" {
				blank = false
			}
			cells[key] = v
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, Row{Number: i + 1, cells: cells})
	}

	return table, nil
}

func findHeaderRow(rows [][]string, required []string) (int, error) {
	if len(rows) == 0 {
		if len(required) > 0 {
			return -1, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(required, ", "))
		}
		return -1, nil
	}
	if len(required) == 0 {
		return 0, nil
	}

	bestMissing := required
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		present := make(map[string]bool, len(rows[i]))
		for _, h := range rows[i] {
			present[normalizeHeader(h)] = true
		}

		var missing []string
		for _, col := range required {
			if !present[normalizeHeader(col)] {
				missing = append(missing, col)
			}
		}
		if len(missing) == 0 {
			return i, nil
		}
		if len(missing) < len(bestMissing) {
			bestMissing = missing
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(bestMissing, ", "))
}

// normalizeHeader folds case and drops whitespace so "Life Style Grup" and
// "LifeStyleGrup" address the same column.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

// Text returns the trimmed cell text, or "" when the column is absent.
func (r Row) Text(col string) string {
	return r.cells[normalizeHeader(col)]
}

// Has reports whether the column exists and is non-empty in this row.
func (r Row) Has(col string) bool {
	return r.Text(col) != ""
}

// Int parses a whole-number cell. Blank cells are 0.
func (r Row) Int(col string) (int, error) {
	v, err := r.OptionalInt(col)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

// OptionalInt parses a whole-number cell, returning nil for blanks.
func (r Row) OptionalInt(col string) (*int, error) {
	raw := r.Text(col)
	if raw == "" {
		return nil, nil
	}
	f, err := parseNumericValue(raw)
	if err != nil {
		return nil, fmt.Errorf("row %d column %s: %q is not a number", r.Number, col, raw)
	}
	n := int(math.Round(f))
	return &n, nil
}

var thousandsSep = regexp.MustCompile(`(\d+)\.(\d{3})`)

// parseNumericValue accepts plain numbers as well as "1.234" or "1.234,5" style input.
func parseNumericValue(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		for thousandsSep.MatchString(s) {
			s = thousandsSep.ReplaceAllString(s, "$1$2")
		}
	}
	return strconv.ParseFloat(s, 64)
}
