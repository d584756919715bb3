package matching

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMinSimilarity is the admission floor for ranked candidates
const DefaultMinSimilarity = 0.6

// Ranked is one scored fuzzy candidate
type Ranked struct {
	Candidate  string
	Index      int
	Similarity float64
	Confidence int
}

// FuzzyMatcher ranks candidates by normalized edit-distance similarity.
// It holds no mutable state.
type FuzzyMatcher struct {
	minSimilarity float64
}

// NewFuzzyMatcher creates a matcher dropping candidates below minSimilarity.
// Values outside (0,1] fall back to DefaultMinSimilarity.
func NewFuzzyMatcher(minSimilarity float64) *FuzzyMatcher {
	if minSimilarity <= 0 || minSimilarity > 1 {
		minSimilarity = DefaultMinSimilarity
	}
	return &FuzzyMatcher{minSimilarity: minSimilarity}
}

// Similarity is 1 - levenshtein(a,b)/max(len(a),len(b)) over case-folded runes
func Similarity(a, b string) float64 {
	a, b = fold(a), fold(b)
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Rank scores every candidate against query, best first. Ties keep input order.
func (m *FuzzyMatcher) Rank(query string, candidates []string) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for i, c := range candidates {
		sim := Similarity(query, c)
		if sim < m.minSimilarity {
			continue
		}
		ranked = append(ranked, Ranked{
			Candidate:  c,
			Index:      i,
			Similarity: sim,
			Confidence: int(math.Round(sim * 100)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	return ranked
}

// Best returns the top candidate and up to three runners-up when the top
// confidence reaches minConfidence
func (m *FuzzyMatcher) Best(query string, candidates []string, minConfidence int) (Ranked, []Ranked, bool) {
	ranked := m.Rank(query, candidates)
	if len(ranked) == 0 || ranked[0].Confidence < minConfidence {
		return Ranked{}, nil, false
	}
	rest := ranked[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return ranked[0], rest, true
}

const maxAlternatives = 3
