// Package dates turns heterogeneous spreadsheet date cells into calendar dates.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gotasks/domain/sheet"
)

const (
	// ExcelSerialThreshold is the heuristic lower bound (exclusive) for reading
	// a number as an Excel serial date. 20000 is 1954-10-03.
	ExcelSerialThreshold = 20000

	// excelUnixOffset is the serial of 1970-01-01
	excelUnixOffset = 25569

	// maxExcelSerial is 9999-12-31, the last date Excel can represent
	maxExcelSerial = 2958465

	minYear = 1900
)

var (
	pureDigits = regexp.MustCompile(`^\d+$`)

	// Numeric dates are read from the start of the cell; a trailing time is ignored
	monthFirst = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:[T\s]|$)`)

	dayFirst = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})(?:[T\s]|$)`)
)

var defaultLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// Parser is a best-effort date reader. It is immutable and safe to share.
type Parser struct {
	layouts []string
}

// NewParser returns a parser with the built-in layouts
func NewParser() *Parser {
	return &Parser{layouts: defaultLayouts}
}

// Parse reads v as a calendar date in UTC. Strategies run in order:
// generic text layouts, Excel serial numbers, then day-first D/M/Y.
func (p *Parser) Parse(v sheet.Value) (time.Time, bool) {
	switch v.Kind() {
	case sheet.KindDate:
		t, _ := v.Date()
		return t.UTC(), true
	case sheet.KindNumber:
		n, _ := v.Number()
		return fromExcelSerial(n)
	case sheet.KindText:
		s, _ := v.Text()
		return p.parseText(strings.TrimSpace(s))
	default:
		return time.Time{}, false
	}
}

// ParseString is Parse for a raw text cell
func (p *Parser) ParseString(s string) (time.Time, bool) {
	return p.Parse(sheet.Text(s))
}

func (p *Parser) parseText(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if pureDigits.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromExcelSerial(n)
	}

	if t, ok := p.parseLayouts(s); ok {
		return t, true
	}

	return parseDayFirst(s)
}

func (p *Parser) parseLayouts(s string) (time.Time, bool) {
	for _, layout := range p.layouts {
		t, err := time.Parse(layout, s)
		if err == nil && t.Year() > minYear {
			return t.UTC(), true
		}
	}

	// Numeric M/D/Y is only taken when the day position rules out a month
	if m := monthFirst.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if day > 12 && year > minYear {
			if t, ok := civilDate(year, month, day); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func parseDayFirst(s string) (time.Time, bool) {
	m := dayFirst.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	return civilDate(year, month, day)
}

// civilDate builds a UTC midnight and rejects components time.Date would normalize
func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func fromExcelSerial(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= ExcelSerialThreshold || n > maxExcelSerial {
		return time.Time{}, false
	}
	days := math.Floor(n)
	seconds := math.Round((n - days) * 86400)
	t := time.Unix(0, 0).UTC().AddDate(0, 0, int(days)-excelUnixOffset)
	return t.Add(time.Duration(seconds) * time.Second), true
}
