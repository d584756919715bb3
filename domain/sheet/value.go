package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage type of a spreadsheet cell, decided once at ingestion.
type Kind string

const (
	KindEmpty   Kind = "empty"
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
)

// Value is a closed scalar variant for one spreadsheet cell.
// The zero Value is empty.
type Value struct {
	kind    Kind
	text    string
	number  float64
	boolean bool
	date    time.Time
}

// Empty returns the empty cell value
func Empty() Value {
	return Value{kind: KindEmpty}
}

// Text creates a text value. Blank strings collapse to Empty.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Empty()
	}
	return Value{kind: KindText, text: s}
}

// Number creates a numeric value. NaN collapses to Empty.
func Number(n float64) Value {
	if math.IsNaN(n) {
		return Empty()
	}
	return Value{kind: KindNumber, number: n}
}

// Boolean creates a boolean value
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Date creates a date value normalized to UTC
func Date(t time.Time) Value {
	if t.IsZero() {
		return Empty()
	}
	return Value{kind: KindDate, date: t.UTC()}
}

// Kind returns the cell kind
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindEmpty
	}
	return v.kind
}

// IsEmpty reports whether the cell holds nothing
func (v Value) IsEmpty() bool {
	return v.Kind() == KindEmpty
}

// Text returns the text payload
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Number returns the numeric payload
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.boolean, true
}

// Date returns the date payload
func (v Value) Date() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String renders the value the way a spreadsheet would display it raw.
// Whole numbers render without a fractional part.
func (v Value) String() string {
	switch v.Kind() {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindDate:
		return formatDate(v.date)
	default:
		return ""
	}
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// MarshalJSON encodes the value as its natural JSON scalar
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsInf(v.number, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.number)
	case KindBoolean:
		return json.Marshal(v.boolean)
	case KindDate:
		return json.Marshal(formatDate(v.date))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into a cell value.
// Strings stay text; typed interpretation happens at the consumer.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Empty()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Boolean(b)
	case '{', '[':
		return fmt.Errorf("cell value must be a scalar, got %s", string(data))
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid numeric cell %s: %w", string(data), err)
		}
		*v = Number(n)
	}
	return nil
}
