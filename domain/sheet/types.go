package sheet

import (
	"strings"
)

// Row is one spreadsheet data row
type Row []Value

// At returns the cell at column i, or Empty when the row is short
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r) {
		return Empty()
	}
	return r[i]
}

// Sheet is a decoded tabular document: one header row plus data rows
type Sheet struct {
	Name    string   `json:"name,omitempty"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Sample returns at most n leading rows
func (s *Sheet) Sample(n int) []Row {
	if n < 0 || n >= len(s.Rows) {
		return s.Rows
	}
	return s.Rows[:n]
}

// HeaderIndex maps each header to its column position.
// With duplicate headers the last occurrence wins.
func HeaderIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	return index
}

// UniqueHeaders returns headers in first-occurrence order without duplicates
func UniqueHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	unique := make([]string, 0, len(headers))
	for _, h := range headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		unique = append(unique, h)
	}
	return unique
}

// TextRows converts raw string records (CSV) into typed rows
func TextRows(records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(record))
		for i, cell := range record {
			row[i] = Text(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// NormalizeHeaders trims headers the way the decoders present them
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}
