package datareadiness

import (
	"github.com/montanaflynn/stats"

	"gotasks/adapters/datareadiness/coercer"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
)

const (
	// DefaultSampleRows is how many leading rows are profiled
	DefaultSampleRows = 10

	maxSampleValues = 3
)

// ColumnProfiler classifies sampled column values. Its output is advisory
// and never changes a column match.
type ColumnProfiler struct {
	coercer    *coercer.TypeCoercer
	sampleRows int
}

// NewColumnProfiler creates a profiler reading at most sampleRows rows
func NewColumnProfiler(c *coercer.TypeCoercer, sampleRows int) *ColumnProfiler {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	return &ColumnProfiler{coercer: c, sampleRows: sampleRows}
}

// SampleRows returns the configured sample size
func (p *ColumnProfiler) SampleRows() int {
	return p.sampleRows
}

// ProfileSheet profiles every header over the leading sample rows.
// Duplicate headers read the last column with that name.
func (p *ColumnProfiler) ProfileSheet(headers []string, rows []sheet.Row) map[string]mapping.ColumnDataProfile {
	if len(rows) > p.sampleRows {
		rows = rows[:p.sampleRows]
	}

	index := sheet.HeaderIndex(headers)
	profiles := make(map[string]mapping.ColumnDataProfile, len(index))
	for header, col := range index {
		values := make([]sheet.Value, len(rows))
		for i, row := range rows {
			values[i] = row.At(col)
		}
		profiles[header] = p.Profile(header, values)
	}
	return profiles
}

// Profile classifies one column's values
func (p *ColumnProfiler) Profile(header string, values []sheet.Value) mapping.ColumnDataProfile {
	nonEmpty := make([]sheet.Value, 0, len(values))
	for _, v := range values {
		if !v.IsEmpty() {
			nonEmpty = append(nonEmpty, v)
		}
	}

	profile := mapping.ColumnDataProfile{
		DataType:     p.inferType(nonEmpty),
		SampleValues: make([]string, 0, maxSampleValues),
		NullCount:    len(values) - len(nonEmpty),
	}

	for i := 0; i < len(nonEmpty) && i < maxSampleValues; i++ {
		profile.SampleValues = append(profile.SampleValues, nonEmpty[i].String())
	}

	if profile.DataType == mapping.DataNumber {
		profile.NumericSummary = computeNumericSummary(nonEmpty)
	}

	return profile
}

// inferType applies the unanimous, then dominant-share rule
func (p *ColumnProfiler) inferType(values []sheet.Value) mapping.DataType {
	if len(values) == 0 {
		return mapping.DataText
	}

	counts := make(map[mapping.DataType]int)
	var order []mapping.DataType
	for _, v := range values {
		t := p.coercer.Classify(v)
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	if len(order) == 1 {
		return order[0]
	}

	total := float64(len(values))
	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	if float64(counts[best])/total > p.coercer.DominantShare() {
		return best
	}
	return mapping.DataMixed
}

// computeNumericSummary calculates min, max and mean for numeric columns
func computeNumericSummary(values []sheet.Value) *mapping.NumericSummary {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if n, ok := coercer.NumericValue(v); ok {
			data = append(data, n)
		}
	}
	if data.Len() == 0 {
		return nil
	}

	minVal, err := data.Min()
	if err != nil {
		return nil
	}
	maxVal, err := data.Max()
	if err != nil {
		return nil
	}
	mean, err := data.Mean()
	if err != nil {
		return nil
	}

	return &mapping.NumericSummary{Min: minVal, Max: maxVal, Mean: mean}
}
