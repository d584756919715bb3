// Package importer turns confirmed spreadsheet rows into validated task drafts.
package importer

import (
	"context"
	"fmt"
	"strings"

	"gotasks/domain/core"
	"gotasks/domain/task"
	"gotasks/internal"
	"gotasks/internal/dates"
	"gotasks/ports"
)

// Pipeline normalizes rows and hands valid drafts to a writer. Rows are
// processed sequentially; a Pipeline holds no per-call state.
type Pipeline struct {
	dates            *dates.Parser
	validator        *task.Validator
	logger           *internal.Logger
	maxReturnedTasks int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *internal.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMaxReturnedTasks caps how many task summaries a report carries
func WithMaxReturnedTasks(n int) Option {
	return func(p *Pipeline) { p.maxReturnedTasks = n }
}

// NewPipeline creates a pipeline
func NewPipeline(parser *dates.Parser, validator *task.Validator, opts ...Option) *Pipeline {
	p := &Pipeline{
		dates:            parser,
		validator:        validator,
		logger:           internal.DefaultLogger,
		maxReturnedTasks: 200,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run imports req.Rows through writer. Validation failures are counted and
// never abort the batch. A writer or context error stops the batch and is
// returned along with the report accumulated so far.
func (p *Pipeline) Run(ctx context.Context, req Request, writer ports.TaskWriter) (*Report, error) {
	if len(req.Headers) == 0 {
		return nil, core.ErrNoHeaders
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("import requires a user")
	}

	columns := p.plan(req.Headers, req.Mappings)

	filterIndex := -1
	if req.HasFilter() {
		for i, h := range req.Headers {
			if h == req.FilterColumn {
				filterIndex = i
			}
		}
		if filterIndex < 0 {
			p.logger.Warn("[Import] filter column %q not in headers; importing all rows", req.FilterColumn)
		}
	}
	filterValue := strings.TrimSpace(req.FilterValue)

	p.logger.Info("[Import] Processing %d rows. Filter: %s=%s", len(req.Rows), req.FilterColumn, req.FilterValue)

	report := newReport()
	for i, row := range req.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rowNum := i + 1

		if filterIndex >= 0 {
			cell := strings.TrimSpace(row.At(filterIndex).String())
			if !strings.EqualFold(cell, filterValue) {
				report.Skipped++
				continue
			}
		}

		draft, reasons := p.normalize(row, columns)
		draft.UserID = req.UserID
		reasons = append(reasons, p.validator.Validate(draft)...)
		if len(reasons) > 0 {
			report.ValidationFailed++
			report.RowErrors = append(report.RowErrors, RowError{Row: rowNum, Reasons: reasons})
			p.logger.Warn("[Import] row %d failed validation: %s", rowNum, strings.Join(reasons, "; "))
			continue
		}

		created, err := writer.CreateTask(ctx, draft)
		if err != nil {
			p.logger.Error("[Import] row %d could not be stored: %v", rowNum, err)
			return report, fmt.Errorf("row %d: %w", rowNum, err)
		}

		report.Imported++
		if len(report.Tasks) < p.maxReturnedTasks {
			report.Tasks = append(report.Tasks, created.Summarize())
		}
	}

	p.logger.Info("[Import] Done: %d imported, %d skipped, %d failed validation",
		report.Imported, report.Skipped, report.ValidationFailed)

	return report, nil
}
