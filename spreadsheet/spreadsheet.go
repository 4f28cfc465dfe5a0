// Package spreadsheet parses uploaded xlsx files into rows of named fields
// and serializes result sets back into downloadable xlsx streams.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseError reports a file that is not in the expected tabular format.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid spreadsheet: " + e.Reason
}

// Row is one data row. Number is the Excel row number (the header is row 1),
// Fields maps the normalized column name to the raw cell value.
type Row struct {
	Number int
	Fields map[string]string
}

// Get returns a trimmed field value; missing columns read as "".
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// Parse reads the first sheet of an xlsx file into rows. Column names are
// lowercased and trimmed; fully blank rows are skipped. Fails when the file
// is not an xlsx, is empty, misses one of the required columns, or holds
// more than maxRows data rows.
func Parse(r io.Reader, required []string, maxRows int) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: "not a readable xlsx file"}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "file has no sheets"}
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: "unable to read sheet"}
	}
	if len(raw) == 0 {
		return nil, &ParseError{Reason: "file is empty"}
	}

	header := make([]string, len(raw[0]))
	seen := make(map[string]bool, len(raw[0]))
	for i, name := range raw[0] {
		normalized := strings.ToLower(strings.TrimSpace(name))
		header[i] = normalized
		seen[normalized] = true
	}
	for _, col := range required {
		if !seen[col] {
			return nil, &ParseError{Reason: "missing required column: " + col}
		}
	}

	var rows []Row
	for i, cells := range raw[1:] {
		fields := make(map[string]string, len(header))
		blank := true
		for j, name := range header {
			if name == "" {
				continue
			}
			var value string
			if j < len(cells) {
				value = strings.TrimSpace(cells[j])
			}
			fields[name] = value
			if value != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Fields: fields})
	}

	if len(rows) == 0 {
		return nil, &ParseError{Reason: "file has no data rows"}
	}
	if maxRows > 0 && len(rows) > maxRows {
		return nil, &ParseError{Reason: fmt.Sprintf("maximum %d rows allowed", maxRows)}
	}
	return rows, nil
}

// Write serializes rows as an xlsx stream with the given fixed column order.
// Empty cells are written as "N/A", matching the portal's export convention.
func Write(w io.Writer, columns []string, rows []map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headerCells := make([]interface{}, len(columns))
	for i, col := range columns {
		headerCells[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			value := row[col]
			if value == "" {
				value = "N/A"
			}
			cells[j] = value
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}
