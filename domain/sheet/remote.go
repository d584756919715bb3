package sheet

// RemoteRequest names a hosted spreadsheet and the A1 range to read.
// An empty Range reads the first tab.
type RemoteRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range,omitempty"`
	AccessToken   string `json:"-"`
}

// Tab describes one tab of a hosted spreadsheet
type Tab struct {
	Title   string `json:"title"`
	SheetID int64  `json:"sheetId"`
	Index   int64  `json:"index"`
}

// Remote is a fetched hosted spreadsheet: its tabs and the decoded range
type Remote struct {
	SpreadsheetTitle string   `json:"spreadsheetTitle"`
	Sheets           []Tab    `json:"sheets"`
	Headers          []string `json:"headers"`
	Rows             []Row    `json:"rows"`
	TotalRows        int      `json:"totalRows"`
}
