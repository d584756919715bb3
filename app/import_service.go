package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gotasks/adapters/datareadiness"
	"gotasks/adapters/excel"
	"gotasks/domain/core"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/internal"
	"gotasks/internal/errors"
	"gotasks/internal/importer"
	"gotasks/internal/matching"
	"gotasks/internal/metrics"
	"gotasks/ports"
)

// ImportService analyzes uploaded sheets and imports confirmed rows as tasks
type ImportService struct {
	matcher  *matching.ColumnMatcher
	profiler *datareadiness.ColumnProfiler
	pipeline *importer.Pipeline
	reader   *excel.Reader
	writer   ports.TaskWriter
	metrics  *metrics.Metrics
	logger   *internal.Logger
}

// AnalyzeRequest carries the headers and sample rows of an uploaded sheet
type AnalyzeRequest struct {
	Headers      []string             `json:"headers"`
	SampleRows   []sheet.Row          `json:"sampleRows"`
	UserMappings mapping.Confirmation `json:"userMappings"`
}

// Analysis is the mapping proposal shown to the user before import
type Analysis struct {
	ColumnMatches []mapping.ColumnMatch                `json:"columnMatches"`
	DataAnalysis  map[string]mapping.ColumnDataProfile `json:"dataAnalysis"`
	Suggestions   mapping.Suggestions                  `json:"suggestions"`
	Headers       []string                             `json:"headers"`
	SampleRows    []sheet.Row                          `json:"sampleRows"`
}

// FieldInfo describes one importable target field
type FieldInfo struct {
	Field    mapping.TargetField `json:"field"`
	Synonyms []string            `json:"synonyms"`
}

// NewImportService creates an import service. metrics may be nil.
func NewImportService(
	matcher *matching.ColumnMatcher,
	profiler *datareadiness.ColumnProfiler,
	pipeline *importer.Pipeline,
	reader *excel.Reader,
	writer ports.TaskWriter,
	m *metrics.Metrics,
	logger *internal.Logger,
) *ImportService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ImportService{
		matcher:  matcher,
		profiler: profiler,
		pipeline: pipeline,
		reader:   reader,
		writer:   writer,
		metrics:  m,
		logger:   logger,
	}
}

// Decode reads an uploaded document. Unreadable documents are input errors.
func (s *ImportService) Decode(name string, data []byte) (*sheet.Sheet, error) {
	decoded, err := s.reader.Read(name, data)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return decoded, nil
}

// Analyze matches every header to a target field and profiles the sample rows.
// Matching and profiling are independent and run concurrently.
func (s *ImportService) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	if len(req.Headers) == 0 {
		return nil, errors.WithCode(errors.CodeInvalidInput, core.ErrNoHeaders)
	}

	sample := req.SampleRows
	if n := s.profiler.SampleRows(); len(sample) > n {
		sample = sample[:n]
	}

	var (
		matches  []mapping.ColumnMatch
		profiles map[string]mapping.ColumnDataProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		matches = s.matcher.MatchAll(req.Headers, req.UserMappings)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		profiles = s.profiler.ProfileSheet(req.Headers, sample)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.metrics.ObserveMatches(matches)
	suggestions := matching.Summarize(matches)

	s.logger.Info("[Analyze] %d columns: %d high confidence, %d need review, %d unmatched",
		suggestions.TotalColumns, suggestions.HighConfidence, len(suggestions.NeedsReview), len(suggestions.Unmatched))

	if sample == nil {
		sample = []sheet.Row{}
	}

	return &Analysis{
		ColumnMatches: matches,
		DataAnalysis:  profiles,
		Suggestions:   suggestions,
		Headers:       req.Headers,
		SampleRows:    sample,
	}, nil
}

// Import runs the confirmed mapping over every row. When the writer fails the
// partial report is returned together with a DATABASE_ERROR.
func (s *ImportService) Import(ctx context.Context, req importer.Request) (*importer.Report, error) {
	start := time.Now()

	report, err := s.pipeline.Run(ctx, req, s.writer)
	if report == nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	result := metrics.ResultOK
	switch {
	case err != nil:
		result = metrics.ResultError
	case report.Imported == 0 && len(req.Rows) > 0:
		result = metrics.ResultNoRows
	}
	s.metrics.ObserveImport(report.Imported, report.Skipped, report.ValidationFailed, result, time.Since(start))

	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return report, errors.Wrap(err, "import cancelled")
		}
		return report, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("import aborted: %w", err))
	}
	return report, nil
}

// Fields lists the importable target fields with their synonyms
func (s *ImportService) Fields() []FieldInfo {
	table := s.matcher.Synonyms()
	fields := table.Fields()
	infos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		infos = append(infos, FieldInfo{Field: f, Synonyms: table.SynonymsFor(f)})
	}
	return infos
}
