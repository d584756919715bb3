package dates

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasks/domain/sheet"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseTextLayouts(t *testing.T) {
	p := NewParser()

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-05-01", day(2024, time.May, 1)},
		{"2024-05-01T09:30:00Z", time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)},
		{"2024/05/01", day(2024, time.May, 1)},
		{"May 1, 2024", day(2024, time.May, 1)},
		{"january 15 2025", day(2025, time.January, 15)},
		{"1 May 2024", day(2024, time.May, 1)},
		{"  2024-05-01  ", day(2024, time.May, 1)},
		{"05/13/2024", day(2024, time.May, 13)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := p.ParseString(tt.input)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseDayFirst(t *testing.T) {
	p := NewParser()

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"01/05/2024", day(2024, time.May, 1)},
		{"13/05/2024", day(2024, time.May, 13)},
		{"1.5.24", day(2024, time.May, 1)},
		{"29-02-2024", day(2024, time.February, 29)},
		{"30/12/2025 14:30", day(2025, time.December, 30)},
		{"30.12.2025 09:00:00", day(2025, time.December, 30)},
		{"01/05/2024 8:00", day(2024, time.May, 1)},
		{"12/30/2025 14:30", day(2025, time.December, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := p.ParseString(tt.input)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseNumericOffsetWithoutColon(t *testing.T) {
	got, ok := NewParser().ParseString("2024-05-01T10:00:00+0200")
	require.True(t, ok)
	assert.True(t, time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC).Equal(got), "got %s", got)
}

func TestParseRejects(t *testing.T) {
	p := NewParser()
	for _, input := range []string{"", "soon", "31/02/2024", "29-02-2023", "13/13/2024", "30/12/20255", "1899-05-01", "12345", "20000"} {
		_, ok := p.ParseString(input)
		assert.False(t, ok, input)
	}

	_, ok := p.Parse(sheet.Boolean(true))
	assert.False(t, ok)
	_, ok = p.Parse(sheet.Empty())
	assert.False(t, ok)
}

func TestDayMonthYearRoundTrip(t *testing.T) {
	p := NewParser()
	start := day(1901, time.January, 1)
	for d := start; d.Year() < 2100; d = d.AddDate(0, 0, 97) {
		input := fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
		got, ok := p.ParseString(input)
		require.True(t, ok, input)
		assert.True(t, d.Equal(got), "%s parsed as %s", input, got)
	}
}

func TestExcelSerial(t *testing.T) {
	p := NewParser()

	got, ok := p.ParseString("44197")
	require.True(t, ok)
	assert.Equal(t, 2021, got.Year())
	assert.True(t, day(2021, time.January, 1).Equal(got))

	got, ok = p.Parse(sheet.Number(45413))
	require.True(t, ok)
	assert.True(t, day(2024, time.May, 1).Equal(got))

	got, ok = p.Parse(sheet.Number(45413.5))
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour())
}

func TestExcelSerialBoundary(t *testing.T) {
	p := NewParser()

	_, ok := p.ParseString("20000")
	assert.False(t, ok, "threshold is exclusive")

	got, ok := p.ParseString("20001")
	require.True(t, ok)
	assert.True(t, day(1954, time.October, 4).Equal(got))

	_, ok = p.Parse(sheet.Number(20000))
	assert.False(t, ok)
}

func TestDateCellsPassThrough(t *testing.T) {
	p := NewParser()
	in := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	got, ok := p.Parse(sheet.Date(in))
	require.True(t, ok)
	assert.True(t, in.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}
