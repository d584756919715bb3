package gsheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"gotasks/domain/core"
	"gotasks/domain/sheet"
	"gotasks/internal/config"
)

type fakeSheets struct {
	mu       sync.Mutex
	status   int
	meta     map[string]interface{}
	values   [][]interface{}
	gotRange string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": f.status, "message": "upstream says no"},
		})
		return
	}

	if i := strings.Index(r.URL.Path, "/values/"); i >= 0 {
		f.gotRange = r.URL.Path[i+len("/values/"):]
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          f.gotRange,
			"majorDimension": "ROWS",
			"values":         f.values,
		})
		return
	}
	_ = json.NewEncoder(w).Encode(f.meta)
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		meta: map[string]interface{}{
			"properties": map[string]interface{}{"title": "Chores"},
			"sheets": []interface{}{
				map[string]interface{}{"properties": map[string]interface{}{"title": "To Do", "sheetId": 0, "index": 0}},
				map[string]interface{}{"properties": map[string]interface{}{"title": "Archive", "sheetId": 42, "index": 1}},
			},
		},
		values: [][]interface{}{
			{},
			{" Task ", "Due", "Hours"},
			{"Buy milk", "2024-05-01", 2.5},
			{"", ""},
			{"Walk dog", nil, true},
		},
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := config.GoogleConfig{Endpoint: srv.URL + "/", Timeout: 5}
	return NewClient(cfg, nil, option.WithHTTPClient(srv.Client()))
}

func TestFetchReadsFirstTab(t *testing.T) {
	fake := newFakeSheets()
	client := newTestClient(t, fake)

	remote, err := client.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123", AccessToken: "token"})
	require.NoError(t, err)

	assert.Equal(t, "Chores", remote.SpreadsheetTitle)
	assert.Equal(t, []sheet.Tab{{Title: "To Do", SheetID: 0, Index: 0}, {Title: "Archive", SheetID: 42, Index: 1}}, remote.Sheets)
	assert.Equal(t, "'To Do'!A1:Z1000", fake.gotRange)

	assert.Equal(t, []string{"Task", "Due", "Hours"}, remote.Headers)
	require.Equal(t, 2, remote.TotalRows)
	require.Len(t, remote.Rows, 2)
	assert.Equal(t, "Buy milk", remote.Rows[0].At(0).String())

	hours, ok := remote.Rows[0].At(2).Number()
	require.True(t, ok)
	assert.Equal(t, 2.5, hours)

	assert.True(t, remote.Rows[1].At(1).IsEmpty())
	done, ok := remote.Rows[1].At(2).Bool()
	require.True(t, ok)
	assert.True(t, done)
}

func TestFetchExplicitRange(t *testing.T) {
	fake := newFakeSheets()
	client := newTestClient(t, fake)

	_, err := client.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123", Range: "Archive!A1:C50", AccessToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, "Archive!A1:C50", fake.gotRange)
}

func TestFetchEmptySheet(t *testing.T) {
	fake := newFakeSheets()
	fake.values = [][]interface{}{{}, {"", nil}}
	client := newTestClient(t, fake)

	_, err := client.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123", AccessToken: "token"})
	assert.ErrorIs(t, err, core.ErrEmptySheet)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFetchUpstreamErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, core.ErrBadSheetRequest},
		{http.StatusUnauthorized, core.ErrSheetCredentials},
		{http.StatusForbidden, core.ErrSheetAccessDenied},
		{http.StatusNotFound, core.ErrSpreadsheetNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			fake := newFakeSheets()
			fake.status = tt.status
			client := newTestClient(t, fake)

			_, err := client.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123", AccessToken: "token"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchRequiresCredentials(t *testing.T) {
	client := NewClient(config.GoogleConfig{}, nil)
	_, err := client.Fetch(context.Background(), sheet.RemoteRequest{SpreadsheetID: "abc123"})
	assert.ErrorIs(t, err, core.ErrSheetCredentials)
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'Sheet1'", quoteTab("Sheet1"))
	assert.Equal(t, "'Bob''s tasks'", quoteTab("Bob's tasks"))
}

func TestCellValue(t *testing.T) {
	assert.True(t, cellValue(nil).IsEmpty())
	assert.True(t, cellValue("  ").IsEmpty())
	assert.Equal(t, sheet.KindText, cellValue("42").Kind())
	assert.Equal(t, sheet.KindNumber, cellValue(42.0).Kind())
	assert.Equal(t, sheet.KindBoolean, cellValue(false).Kind())
}
