package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
)

// CoercionConfig controls how sample values are classified
type CoercionConfig struct {
	BooleanLiterals []string `json:"boolean_literals"` // compared case-insensitively
	DominantShare   float64  `json:"dominant_share"`   // share a type needs to win a mixed column
}

// DefaultCoercionConfig returns the classification rules used for imports
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		BooleanLiterals: []string{"true", "false", "yes", "no", "x", "✓", "✗"},
		DominantShare:   0.8,
	}
}

// TypeCoercer classifies individual spreadsheet cells
type TypeCoercer struct {
	config   CoercionConfig
	booleans map[string]bool
}

// Date-like shapes: ISO prefix, M/D/Y, M-D-Y, "Month D, YYYY"
var dateLike = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}`),
	regexp.MustCompile(`^\w{3,9}\s+\d{1,2},?\s+\d{4}`),
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	booleans := make(map[string]bool, len(config.BooleanLiterals))
	for _, lit := range config.BooleanLiterals {
		booleans[strings.ToLower(lit)] = true
	}
	return &TypeCoercer{config: config, booleans: booleans}
}

// DominantShare returns the configured dominant-type share
func (c *TypeCoercer) DominantShare() float64 {
	return c.config.DominantShare
}

// Classify returns the data type of a single non-empty cell. Typed cells
// keep their kind; text is tested as boolean literal, number, date, text.
func (c *TypeCoercer) Classify(v sheet.Value) mapping.DataType {
	switch v.Kind() {
	case sheet.KindBoolean:
		return mapping.DataBoolean
	case sheet.KindNumber:
		return mapping.DataNumber
	case sheet.KindDate:
		return mapping.DataDate
	}

	s := strings.TrimSpace(v.String())
	if c.IsBooleanLiteral(s) {
		return mapping.DataBoolean
	}
	if _, ok := TryParseNumeric(s); ok {
		return mapping.DataNumber
	}
	if IsDateLike(s) {
		return mapping.DataDate
	}
	return mapping.DataText
}

// IsBooleanLiteral reports whether s is one of the configured literals
func (c *TypeCoercer) IsBooleanLiteral(s string) bool {
	return c.booleans[strings.ToLower(strings.TrimSpace(s))]
}

// TryParseNumeric parses a plain decimal or scientific number
func TryParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// IsDateLike reports whether s has one of the common date shapes
func IsDateLike(s string) bool {
	for _, re := range dateLike {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// NumericValue extracts a number from a numeric cell or numeric text
func NumericValue(v sheet.Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	if s, ok := v.Text(); ok {
		return TryParseNumeric(s)
	}
	return 0, false
}
