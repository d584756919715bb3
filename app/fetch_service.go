package app

import (
	"context"
	stderrors "errors"
	"strings"

	"gotasks/domain/core"
	"gotasks/domain/sheet"
	"gotasks/internal"
	"gotasks/internal/errors"
	"gotasks/ports"
)

// SheetFetchService loads hosted spreadsheets so they can be analyzed like uploads
type SheetFetchService struct {
	source ports.SheetSource
	logger *internal.Logger
}

// NewSheetFetchService creates a fetch service over source
func NewSheetFetchService(source ports.SheetSource, logger *internal.Logger) *SheetFetchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SheetFetchService{source: source, logger: logger}
}

// Fetch reads the requested range of a hosted spreadsheet
func (s *SheetFetchService) Fetch(ctx context.Context, req sheet.RemoteRequest) (*sheet.Remote, error) {
	req.SpreadsheetID = strings.TrimSpace(req.SpreadsheetID)
	req.Range = strings.TrimSpace(req.Range)
	if req.SpreadsheetID == "" {
		return nil, errors.InvalidInput("spreadsheetId is required")
	}

	remote, err := s.source.Fetch(ctx, req)
	if err != nil {
		s.logger.Warn("[Fetch] spreadsheet %s: %v", req.SpreadsheetID, err)
		return nil, fetchError(err)
	}

	s.logger.Info("[Fetch] spreadsheet %s: %d columns, %d rows", req.SpreadsheetID, len(remote.Headers), remote.TotalRows)
	return remote, nil
}

func fetchError(err error) error {
	switch {
	case stderrors.Is(err, core.ErrNotFound):
		return errors.WithCode(errors.CodeNotFound, err)
	case stderrors.Is(err, core.ErrSheetAccessDenied):
		return errors.WithCode(errors.CodeForbidden, err)
	case stderrors.Is(err, core.ErrSheetCredentials):
		return errors.WithCode(errors.CodeUnauthorized, err)
	case stderrors.Is(err, core.ErrBadSheetRequest):
		return errors.WithCode(errors.CodeInvalidInput, err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, "spreadsheet fetch interrupted")
	default:
		return errors.WithCode(errors.CodeInternalError, err)
	}
}
