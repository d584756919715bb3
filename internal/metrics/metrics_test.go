package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"gotasks/domain/mapping"
)

func TestObserveImport(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveImport(3, 1, 2, ResultOK, 50*time.Millisecond)
	m.ObserveImport(0, 0, 4, ResultNoRows, 10*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ImportRows.WithLabelValues(OutcomeImported)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ImportRows.WithLabelValues(OutcomeValidationFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportBatches.WithLabelValues(ResultNoRows)))
}

func TestObserveMatches(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMatches([]mapping.ColumnMatch{
		{SourceColumn: "Task", TargetField: mapping.Field(mapping.FieldTitle), SuggestedBy: mapping.BySynonym},
		{SourceColumn: "Zzz", SuggestedBy: mapping.ByFuzzy},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColumnMatches.WithLabelValues("synonym")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColumnMatches.WithLabelValues("none")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveImport(1, 0, 0, ResultOK, time.Second)
		m.ObserveMatches(nil)
	})
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/v1/tasks", 200, time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/tasks", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/tasks", "200")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveHTTP("GET", "/", 200, 0) })
}
