package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound         = errors.New("resource not found")
	ErrTaskNotFound     = fmt.Errorf("%w: task", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)

	ErrNoHeaders      = errors.New("no headers found in sheet")
	ErrEmptyWorkbook  = errors.New("workbook contains no sheets")
	ErrUnsupportedExt = errors.New("unsupported spreadsheet format")

	ErrSpreadsheetNotFound = fmt.Errorf("%w: spreadsheet, check the URL and sharing settings", ErrNotFound)
	ErrEmptySheet          = fmt.Errorf("%w: no data found in sheet", ErrNotFound)
	ErrSheetAccessDenied   = errors.New("permission denied, grant access to Google Sheets")
	ErrSheetCredentials    = errors.New("missing or invalid Google credentials")
	ErrBadSheetRequest     = errors.New("invalid spreadsheet request")
)

// NewNotFoundError wraps ErrNotFound with the resource kind and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
