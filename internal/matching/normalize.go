package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold canonicalizes a header or token for comparison: trimmed, NFC-composed,
// Unicode case-folded. A fresh Caser is used per call since Casers keep state.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
