package matching

import (
	"gotasks/domain/mapping"
)

// Cascade thresholds. Confidence values are heuristic ranking scores.
const (
	ExactConfidence           = 100
	UserConfidence            = 100
	SynonymConfidence         = 90
	FieldFuzzyThreshold       = 70
	SynonymFuzzyThreshold     = 65
	SynonymFuzzyPenalty       = 5
	SynonymFuzzyMaxConfidence = 85
)

// ColumnMatcher infers the target field of spreadsheet columns by running
// user override, exact, synonym, fuzzy and pattern tiers in order.
type ColumnMatcher struct {
	synonyms   *SynonymTable
	fuzzy      *FuzzyMatcher
	fieldNames []string
	folded     map[string]mapping.TargetField
	vocabulary []string
}

// NewColumnMatcher wires a matcher to a synonym table and fuzzy ranker
func NewColumnMatcher(synonyms *SynonymTable, fuzzy *FuzzyMatcher) *ColumnMatcher {
	fields := synonyms.Fields()
	m := &ColumnMatcher{
		synonyms:   synonyms,
		fuzzy:      fuzzy,
		fieldNames: make([]string, 0, len(fields)),
		folded:     make(map[string]mapping.TargetField, len(fields)),
		vocabulary: synonyms.Vocabulary(),
	}
	for _, f := range fields {
		m.fieldNames = append(m.fieldNames, string(f))
		m.folded[fold(string(f))] = f
	}
	return m
}

// Synonyms exposes the table the matcher was built with
func (m *ColumnMatcher) Synonyms() *SynonymTable {
	return m.synonyms
}

// Match resolves one column. A column present in confirmation always wins.
func (m *ColumnMatcher) Match(column string, confirmation mapping.Confirmation) mapping.ColumnMatch {
	if target, ok := confirmation.Lookup(column); ok {
		match := mapping.ColumnMatch{
			SourceColumn: column,
			Confidence:   UserConfidence,
			SuggestedBy:  mapping.ByUser,
		}
		if !target.IsNone() {
			match.TargetField = mapping.Field(target)
		}
		return match
	}

	folded := fold(column)

	if field, ok := m.folded[folded]; ok {
		return mapping.ColumnMatch{
			SourceColumn: column,
			TargetField:  mapping.Field(field),
			Confidence:   ExactConfidence,
			SuggestedBy:  mapping.ByExact,
		}
	}

	if field, ok := m.synonyms.FieldFor(folded); ok {
		return mapping.ColumnMatch{
			SourceColumn: column,
			TargetField:  mapping.Field(field),
			Confidence:   SynonymConfidence,
			SuggestedBy:  mapping.BySynonym,
		}
	}

	if top, rest, ok := m.fuzzy.Best(folded, m.fieldNames, FieldFuzzyThreshold); ok {
		alternatives := make([]mapping.Alternative, 0, len(rest))
		for _, r := range rest {
			alternatives = append(alternatives, mapping.Alternative{
				Field:      mapping.TargetField(r.Candidate),
				Confidence: r.Confidence,
			})
		}
		return mapping.ColumnMatch{
			SourceColumn: column,
			TargetField:  mapping.Field(mapping.TargetField(top.Candidate)),
			Confidence:   top.Confidence,
			SuggestedBy:  mapping.ByFuzzy,
			Alternatives: alternatives,
		}
	}

	if top, rest, ok := m.fuzzy.Best(folded, m.vocabulary, SynonymFuzzyThreshold); ok {
		owner, _ := m.synonyms.FieldFor(top.Candidate)
		alternatives := make([]mapping.Alternative, 0, len(rest))
		for _, r := range rest {
			field, _ := m.synonyms.FieldFor(r.Candidate)
			alternatives = append(alternatives, mapping.Alternative{
				Field:      field,
				Confidence: r.Confidence,
			})
		}
		return mapping.ColumnMatch{
			SourceColumn: column,
			TargetField:  mapping.Field(owner),
			Confidence:   min(top.Confidence-SynonymFuzzyPenalty, SynonymFuzzyMaxConfidence),
			SuggestedBy:  mapping.ByFuzzy,
			Alternatives: alternatives,
		}
	}

	if field, confidence, ok := detectByPattern(folded); ok {
		return mapping.ColumnMatch{
			SourceColumn: column,
			TargetField:  mapping.Field(field),
			Confidence:   confidence,
			SuggestedBy:  mapping.ByPattern,
		}
	}

	return mapping.ColumnMatch{
		SourceColumn: column,
		Confidence:   0,
		SuggestedBy:  mapping.ByFuzzy,
	}
}

// MatchAll resolves columns in order. Duplicates and conflicting targets are
// reported as-is.
func (m *ColumnMatcher) MatchAll(columns []string, confirmation mapping.Confirmation) []mapping.ColumnMatch {
	matches := make([]mapping.ColumnMatch, 0, len(columns))
	for _, c := range columns {
		matches = append(matches, m.Match(c, confirmation))
	}
	return matches
}

// ConfidenceLabel buckets a confidence score for display
func ConfidenceLabel(confidence int) string {
	switch {
	case confidence >= 85:
		return "high"
	case confidence >= 60:
		return "medium"
	default:
		return "low"
	}
}

// Summarize groups matches for the confirmation UI
func Summarize(matches []mapping.ColumnMatch) mapping.Suggestions {
	s := mapping.Suggestions{
		NeedsReview:  []string{},
		Unmatched:    []string{},
		TotalColumns: len(matches),
	}
	for _, m := range matches {
		switch {
		case m.Confidence == 0:
			s.Unmatched = append(s.Unmatched, m.SourceColumn)
		case m.Confidence < FieldFuzzyThreshold:
			s.NeedsReview = append(s.NeedsReview, m.SourceColumn)
		}
		if m.Confidence >= 85 {
			s.HighConfidence++
		}
	}
	return s
}
