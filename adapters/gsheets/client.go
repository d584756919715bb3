// Package gsheets reads hosted Google Sheets ranges through the Sheets v4 API.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"gotasks/domain/core"
	"gotasks/domain/sheet"
	"gotasks/internal"
	"gotasks/internal/config"
	"gotasks/ports"
)

const (
	defaultRange   = "A1:Z1000"
	defaultTimeout = 30 * time.Second
)

// Client fetches spreadsheets as the caller. A request's access token takes
// precedence over the configured API key.
type Client struct {
	apiKey       string
	endpoint     string
	defaultRange string
	timeout      time.Duration
	options      []option.ClientOption
	logger       *internal.Logger
}

var _ ports.SheetSource = (*Client)(nil)

// NewClient creates a Sheets client. Extra options are applied to every call.
func NewClient(cfg config.GoogleConfig, logger *internal.Logger, opts ...option.ClientOption) *Client {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	c := &Client{
		apiKey:       cfg.APIKey,
		endpoint:     cfg.Endpoint,
		defaultRange: cfg.DefaultRange,
		timeout:      time.Duration(cfg.Timeout) * time.Second,
		options:      opts,
		logger:       logger,
	}
	if c.defaultRange == "" {
		c.defaultRange = defaultRange
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

// Fetch reads the spreadsheet's tab list and the requested range. The first
// non-blank row of the range is the header row; blank rows are dropped.
func (c *Client) Fetch(ctx context.Context, req sheet.RemoteRequest) (*sheet.Remote, error) {
	opts, err := c.clientOptions(req.AccessToken)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	start := time.Now()
	doc, err := svc.Spreadsheets.Get(req.SpreadsheetID).
		Fields("properties.title", "sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	remote := &sheet.Remote{Sheets: make([]sheet.Tab, 0, len(doc.Sheets))}
	if doc.Properties != nil {
		remote.SpreadsheetTitle = doc.Properties.Title
	}
	for _, s := range doc.Sheets {
		if s.Properties == nil {
			continue
		}
		remote.Sheets = append(remote.Sheets, sheet.Tab{
			Title:   s.Properties.Title,
			SheetID: s.Properties.SheetId,
			Index:   s.Properties.Index,
		})
	}

	target := req.Range
	if target == "" {
		target = c.defaultRange
		if len(remote.Sheets) > 0 {
			target = quoteTab(remote.Sheets[0].Title) + "!" + c.defaultRange
		}
	}

	values, err := svc.Spreadsheets.Values.Get(req.SpreadsheetID, target).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	if err := decodeValues(remote, values.Values); err != nil {
		return nil, err
	}

	c.logger.Debug("[Sheets] %s range %q fetched in %.2fms (%d columns, %d rows)",
		req.SpreadsheetID, target, float64(time.Since(start).Nanoseconds())/1e6,
		len(remote.Headers), remote.TotalRows)

	return remote, nil
}

func (c *Client) clientOptions(accessToken string) ([]option.ClientOption, error) {
	opts := make([]option.ClientOption, 0, len(c.options)+2)
	opts = append(opts, c.options...)

	switch {
	case accessToken != "":
		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	case c.apiKey != "":
		opts = append(opts, option.WithAPIKey(c.apiKey))
	default:
		return nil, core.ErrSheetCredentials
	}

	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return opts, nil
}

func decodeValues(remote *sheet.Remote, values [][]interface{}) error {
	top := -1
	for i, record := range values {
		if !blankRecord(record) {
			top = i
			break
		}
	}
	if top < 0 {
		return core.ErrEmptySheet
	}

	headers := make([]string, len(values[top]))
	for i, cell := range values[top] {
		headers[i] = cellValue(cell).String()
	}
	remote.Headers = sheet.NormalizeHeaders(headers)

	remote.Rows = make([]sheet.Row, 0, len(values)-top-1)
	for _, record := range values[top+1:] {
		if blankRecord(record) {
			continue
		}
		row := make(sheet.Row, len(record))
		for i, cell := range record {
			row[i] = cellValue(cell)
		}
		remote.Rows = append(remote.Rows, row)
	}
	remote.TotalRows = len(remote.Rows)
	return nil
}

// cellValue converts a decoded JSON cell. Formatted values arrive as strings;
// unformatted reads yield numbers and booleans.
func cellValue(cell interface{}) sheet.Value {
	switch v := cell.(type) {
	case nil:
		return sheet.Empty()
	case string:
		return sheet.Text(v)
	case float64:
		return sheet.Number(v)
	case bool:
		return sheet.Boolean(v)
	default:
		return sheet.Text(fmt.Sprint(v))
	}
}

func blankRecord(record []interface{}) bool {
	for _, cell := range record {
		if !cellValue(cell).IsEmpty() {
			return false
		}
	}
	return true
}

// quoteTab quotes a tab title for A1 notation
func quoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// classify maps API failures onto the core sheet errors
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("failed to fetch spreadsheet: %w", err)
	}

	switch apiErr.Code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", core.ErrBadSheetRequest, apiErr.Message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", core.ErrSheetCredentials, apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", core.ErrSheetAccessDenied, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrSpreadsheetNotFound, apiErr.Message)
	default:
		return fmt.Errorf("failed to fetch spreadsheet: %w", err)
	}
}
