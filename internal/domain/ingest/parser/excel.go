// Package parser reads clearing-report workbooks into raw key/value rows.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet row keyed by raw header string. Values are untyped
// cell text; normalization happens downstream.
type Row map[string]string

// ParseWorkbook reads the first sheet of an xlsx workbook and returns one Row
// per data line. The first non-empty sheet row is treated as the header row.
//
// Blank header cells get "__EMPTY"-prefixed placeholder names, mirroring what
// spreadsheet-to-JSON exporters produce; the column normalizer filters those
// out. Short rows are padded with empty strings so every Row carries every
// header key.
func ParseWorkbook(reader io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Only the first sheet is read.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []Row{}, nil
	}

	headers := headerNames(rows[0])

	out := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if isEmptyRow(cells) {
			continue
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		out = append(out, row)
	}

	return out, nil
}

// headerNames substitutes placeholders for blank header cells. The first
// blank column is "__EMPTY", later ones "__EMPTY_1", "__EMPTY_2", ...
func headerNames(headerRow []string) []string {
	headers := make([]string, len(headerRow))
	emptySeen := 0
	for i, cell := range headerRow {
		if strings.TrimSpace(cell) == "" {
			if emptySeen == 0 {
				headers[i] = "__EMPTY"
			} else {
				headers[i] = fmt.Sprintf("__EMPTY_%d", emptySeen)
			}
			emptySeen++
			continue
		}
		headers[i] = cell
	}
	return headers
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
