package importer

import (
	"gotasks/domain/core"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/domain/task"
)

// Request is one import call: decoded rows plus the user-confirmed mapping
type Request struct {
	UserID       core.UserID
	Headers      []string
	Rows         []sheet.Row
	Mappings     mapping.Confirmation
	FilterColumn string
	FilterValue  string
}

// HasFilter reports whether both filter column and value are set
func (r *Request) HasFilter() bool {
	return r.FilterColumn != "" && r.FilterValue != ""
}

// RowError explains why a row failed validation. Row is 1-based over data rows.
type RowError struct {
	Row     int      `json:"row"`
	Reasons []string `json:"reasons"`
}

// Report tallies row dispositions for one import call. When the run finishes
// without a writer error, Imported+Skipped+ValidationFailed equals the row count.
type Report struct {
	Imported         int            `json:"imported"`
	Skipped          int            `json:"skipped"`
	ValidationFailed int            `json:"validationFailed"`
	Tasks            []task.Summary `json:"tasks"`
	RowErrors        []RowError     `json:"rowErrors"`
}

// Processed returns how many rows reached a disposition
func (r *Report) Processed() int {
	return r.Imported + r.Skipped + r.ValidationFailed
}

func newReport() *Report {
	return &Report{
		Tasks:     []task.Summary{},
		RowErrors: []RowError{},
	}
}
