// Package metrics defines the Prometheus instruments for imports and HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gotasks/domain/mapping"
)

// Metrics holds Prometheus metrics for the import pipeline and HTTP layer.
//
// Metrics:
//   - gotasks_import_rows_total{outcome} - rows by disposition
//   - gotasks_import_batches_total{result} - import calls by result
//   - gotasks_import_duration_seconds - import call latency
//   - gotasks_column_matches_total{provenance} - matches by cascade tier
//   - gotasks_http_requests_total{method,route,status} - HTTP requests
//   - gotasks_http_request_duration_seconds{method,route} - HTTP latency
type Metrics struct {
	ImportRows     *prometheus.CounterVec
	ImportBatches  *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	ColumnMatches  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// Row outcomes
const (
	OutcomeImported         = "imported"
	OutcomeSkipped          = "skipped"
	OutcomeValidationFailed = "validation_failed"
)

// Batch results
const (
	ResultOK     = "ok"
	ResultNoRows = "no_rows_imported"
	ResultError  = "error"
)

// New creates and registers metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotasks_import_rows_total",
				Help: "Spreadsheet rows processed by disposition",
			},
			[]string{"outcome"},
		),
		ImportBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotasks_import_batches_total",
				Help: "Import calls by result",
			},
			[]string{"result"},
		),
		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gotasks_import_duration_seconds",
				Help:    "Duration of import calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ColumnMatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotasks_column_matches_total",
				Help: "Column matches by cascade tier",
			},
			[]string{"provenance"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotasks_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gotasks_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveImport records the row counts and result of one import call
func (m *Metrics) ObserveImport(imported, skipped, failed int, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues(OutcomeImported).Add(float64(imported))
	m.ImportRows.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	m.ImportRows.WithLabelValues(OutcomeValidationFailed).Add(float64(failed))
	m.ImportBatches.WithLabelValues(result).Inc()
	m.ImportDuration.Observe(elapsed.Seconds())
}

// ObserveMatches counts matches by provenance; unmatched columns count as "none"
func (m *Metrics) ObserveMatches(matches []mapping.ColumnMatch) {
	if m == nil {
		return
	}
	for _, match := range matches {
		label := string(match.SuggestedBy)
		if !match.Matched() {
			label = "none"
		}
		m.ColumnMatches.WithLabelValues(label).Inc()
	}
}

// ObserveHTTP records one served request. route is the matched route pattern.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
