// Package excel decodes uploaded xlsx and csv documents into sheets.
package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gotasks/domain/core"
	"gotasks/domain/sheet"
	"gotasks/internal"
)

// Format is a supported document encoding
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// zip local file header; every xlsx starts with it
var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks a format from the file name, sniffing the content when
// the name carries no extension
func DetectFormat(name string, data []byte) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case "":
		if bytes.HasPrefix(data, zipMagic) {
			return FormatXLSX, nil
		}
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedExt, ext)
	}
}

// Reader handles reading Excel and CSV documents
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a reader; a nil logger falls back to the default logger
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger}
}

// ReadFile reads a document from disk
func (r *Reader) ReadFile(path string) (*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Read(filepath.Base(path), data)
}

// Read decodes data as the first worksheet of an xlsx workbook or as csv.
// The first row is the header row; fully blank data rows are dropped.
func (r *Reader) Read(name string, data []byte) (*sheet.Sheet, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var s *sheet.Sheet
	switch format {
	case FormatXLSX:
		s, err = r.readExcel(data)
	default:
		s, err = r.readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("[DataReader] %s %q decoded in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), name, float64(time.Since(start).Nanoseconds())/1e6,
		len(s.Headers), len(s.Rows))

	return s, nil
}

func (r *Reader) readExcel(data []byte) (*sheet.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptyWorkbook
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	top := headerRow(raw)
	if top < 0 {
		return nil, core.ErrNoHeaders
	}

	s := &sheet.Sheet{
		Name:    name,
		Headers: sheet.NormalizeHeaders(raw[top]),
		Rows:    make([]sheet.Row, 0, len(raw)-top-1),
	}

	for i := top + 1; i < len(raw); i++ {
		record := raw[i]
		if isBlank(record) {
			continue
		}
		row := make(sheet.Row, len(record))
		for j, cell := range record {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(name, ref)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", ref, err)
			}
			row[j] = cellValue(cellType, cell)
		}
		s.Rows = append(s.Rows, row)
	}

	return s, nil
}

// cellValue converts a raw cell into a typed value using the cell's storage type.
// Date-formatted numbers stay numeric; the date parser reads them as serials.
func cellValue(cellType excelize.CellType, raw string) sheet.Value {
	if strings.TrimSpace(raw) == "" {
		return sheet.Empty()
	}

	switch cellType {
	case excelize.CellTypeBool:
		return sheet.Boolean(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return sheet.Date(t)
		}
		if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
			return sheet.Date(t)
		}
		return sheet.Text(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeFormula:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return sheet.Number(n)
		}
		return sheet.Text(raw)
	case excelize.CellTypeError:
		return sheet.Empty()
	default:
		return sheet.Text(raw)
	}
}

func (r *Reader) readCSV(data []byte) (*sheet.Sheet, error) {
	// strips a UTF-8 or UTF-16 byte order mark, decoding UTF-16 when present
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	top := headerRow(records)
	if top < 0 {
		return nil, core.ErrNoHeaders
	}

	body := make([][]string, 0, len(records)-top-1)
	for _, record := range records[top+1:] {
		if !isBlank(record) {
			body = append(body, record)
		}
	}

	return &sheet.Sheet{
		Headers: sheet.NormalizeHeaders(records[top]),
		Rows:    sheet.TextRows(body),
	}, nil
}

// headerRow returns the index of the first non-blank record, or -1
func headerRow(records [][]string) int {
	for i, record := range records {
		if !isBlank(record) {
			return i
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
