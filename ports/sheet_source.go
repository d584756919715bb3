package ports

import (
	"context"

	"gotasks/domain/sheet"
)

// SheetSource loads a hosted spreadsheet range as headers plus rows.
// Errors wrap the core sheet sentinels (not found, access denied, credentials).
type SheetSource interface {
	Fetch(ctx context.Context, req sheet.RemoteRequest) (*sheet.Remote, error)
}
