package app

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gotasks/adapters/datareadiness"
	"gotasks/adapters/datareadiness/coercer"
	"gotasks/adapters/excel"
	"gotasks/adapters/memory"
	"gotasks/domain/core"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/domain/task"
	apperrors "gotasks/internal/errors"
	"gotasks/internal/dates"
	"gotasks/internal/importer"
	"gotasks/internal/matching"
	"gotasks/internal/metrics"
	"gotasks/ports"
)

func newTestImportService(t *testing.T, writer ports.TaskWriter) (*ImportService, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewImportService(
		matching.NewColumnMatcher(matching.DefaultSynonymTable(), matching.NewFuzzyMatcher(matching.DefaultMinSimilarity)),
		datareadiness.NewColumnProfiler(coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()), datareadiness.DefaultSampleRows),
		importer.NewPipeline(dates.NewParser(), task.NewValidator()),
		excel.NewReader(nil),
		writer,
		m,
		nil,
	)
	return svc, m
}

func textRow(cells ...string) sheet.Row {
	row := make(sheet.Row, len(cells))
	for i, c := range cells {
		row[i] = sheet.Text(c)
	}
	return row
}

func TestAnalyze(t *testing.T) {
	svc, m := newTestImportService(t, memory.NewTaskRepository())

	rows := make([]sheet.Row, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, sheet.Row{sheet.Text("Buy milk"), sheet.Number(float64(i)), sheet.Text("2024-05-01")})
	}

	analysis, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Headers:      []string{"Task", "Count", "Deadline"},
		SampleRows:   rows,
		UserMappings: mapping.Confirmation{"Count": mapping.FieldEstimatedTime},
	})
	require.NoError(t, err)

	require.Len(t, analysis.ColumnMatches, 3)
	assert.Equal(t, mapping.FieldTitle, analysis.ColumnMatches[0].Target())
	assert.Equal(t, mapping.FieldEstimatedTime, analysis.ColumnMatches[1].Target())
	assert.Equal(t, mapping.ByUser, analysis.ColumnMatches[1].SuggestedBy)
	assert.Equal(t, mapping.FieldDueDate, analysis.ColumnMatches[2].Target())

	assert.Len(t, analysis.SampleRows, datareadiness.DefaultSampleRows)
	assert.Equal(t, mapping.DataNumber, analysis.DataAnalysis["Count"].DataType)
	assert.Equal(t, mapping.DataDate, analysis.DataAnalysis["Deadline"].DataType)
	assert.Equal(t, 3, analysis.Suggestions.TotalColumns)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColumnMatches.WithLabelValues(string(mapping.ByUser))))
}

func TestAnalyzeWithoutHeaders(t *testing.T) {
	svc, _ := newTestImportService(t, memory.NewTaskRepository())

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrNoHeaders)
}

func TestImportStoresTasks(t *testing.T) {
	repo := memory.NewTaskRepository()
	svc, m := newTestImportService(t, repo)

	report, err := svc.Import(context.Background(), importer.Request{
		UserID:   core.DefaultUserID,
		Headers:  []string{"Task", "Due", "Pri"},
		Rows:     []sheet.Row{textRow("Buy milk", "2024-05-01", "high"), textRow("", "", "")},
		Mappings: mapping.Confirmation{"Task": mapping.FieldTitle, "Due": mapping.FieldDueDate, "Pri": mapping.FieldPriority},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.ValidationFailed)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRows.WithLabelValues(metrics.OutcomeValidationFailed)))
}

func TestImportNothingImported(t *testing.T) {
	svc, m := newTestImportService(t, memory.NewTaskRepository())

	report, err := svc.Import(context.Background(), importer.Request{
		UserID:   core.DefaultUserID,
		Headers:  []string{"Task"},
		Rows:     []sheet.Row{textRow("")},
		Mappings: mapping.Confirmation{"Task": mapping.FieldTitle},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(metrics.ResultNoRows)))
}

func TestImportInputShapeError(t *testing.T) {
	svc, _ := newTestImportService(t, memory.NewTaskRepository())

	report, err := svc.Import(context.Background(), importer.Request{UserID: core.DefaultUserID})
	assert.Nil(t, report)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

type failingWriter struct{ mock.Mock }

func (w *failingWriter) CreateTask(ctx context.Context, d *task.Draft) (*task.Task, error) {
	args := w.Called(ctx, d)
	return nil, args.Error(1)
}

func TestImportWriterFailureKeepsPartialReport(t *testing.T) {
	writer := new(failingWriter)
	writer.On("CreateTask", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	svc, m := newTestImportService(t, writer)

	report, err := svc.Import(context.Background(), importer.Request{
		UserID:   core.DefaultUserID,
		Headers:  []string{"Task"},
		Rows:     []sheet.Row{textRow("a"), textRow("b")},
		Mappings: mapping.Confirmation{"Task": mapping.FieldTitle},
	})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(metrics.ResultError)))
}

func TestDecode(t *testing.T) {
	svc, _ := newTestImportService(t, memory.NewTaskRepository())

	s, err := svc.Decode("tasks.csv", []byte("Task\nBuy milk\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Task"}, s.Headers)

	_, err = svc.Decode("tasks.pdf", []byte("%PDF"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestFields(t *testing.T) {
	svc, _ := newTestImportService(t, memory.NewTaskRepository())

	fields := svc.Fields()
	require.Len(t, fields, len(mapping.TargetFields))
	assert.Equal(t, mapping.FieldTitle, fields[0].Field)
	assert.Contains(t, fields[0].Synonyms, "title")
}
