package ui

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"gotasks/app"
	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/internal/errors"
	"gotasks/internal/importer"
	"gotasks/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// importPayload is the JSON form of an import request
type importPayload struct {
	Headers      []string             `json:"headers"`
	Rows         []sheet.Row          `json:"rows"`
	Mappings     mapping.Confirmation `json:"mappings"`
	FilterColumn string               `json:"filterColumn"`
	FilterValue  string               `json:"filterValue"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readUpload decodes the multipart "file" field
func (s *Server) readUpload(c *gin.Context) (*sheet.Sheet, error) {
	// allow some room for the other form fields
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+(1<<20))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.PayloadTooLarge(s.maxUploadMB)
		}
		return nil, errors.InvalidInput("file is required")
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		return nil, errors.PayloadTooLarge(s.maxUploadMB)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return s.imports.Decode(header.Filename, data)
}

// formMappings parses a JSON object of column to field name from a form
// field; empty is allowed
func formMappings(c *gin.Context, field string) (mapping.Confirmation, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return mapping.Confirmation{}, nil
	}

	parsed := gjson.Parse(raw)
	if !gjson.Valid(raw) || !parsed.IsObject() {
		return nil, errors.InvalidInput(field + " must be a JSON object of column to field")
	}

	confirmation := mapping.Confirmation{}
	var bad string
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String && value.Type != gjson.Null {
			bad = key.String()
			return false
		}
		confirmation[key.String()] = mapping.TargetField(value.String())
		return true
	})
	if bad != "" {
		return nil, errors.InvalidInput(field + ": value for column " + bad + " must be a string")
	}
	return confirmation, nil
}

func (s *Server) handleImportFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.imports.Fields()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req app.AnalyzeRequest

	if isMultipart(c) {
		decoded, err := s.readUpload(c)
		if err != nil {
			s.respondError(c, err)
			return
		}
		confirmation, err := formMappings(c, "userMappings")
		if err != nil {
			s.respondError(c, err)
			return
		}
		req = app.AnalyzeRequest{Headers: decoded.Headers, SampleRows: decoded.Rows, UserMappings: confirmation}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput("invalid analyze payload: "+err.Error()))
		return
	}

	analysis, err := s.imports.Analyze(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": analysis})
}

func (s *Server) handleImport(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	req := importer.Request{UserID: userID}

	if isMultipart(c) {
		decoded, err := s.readUpload(c)
		if err != nil {
			s.respondError(c, err)
			return
		}
		confirmation, err := formMappings(c, "mappings")
		if err != nil {
			s.respondError(c, err)
			return
		}
		req.Headers = decoded.Headers
		req.Rows = decoded.Rows
		req.Mappings = confirmation
		req.FilterColumn = c.PostForm("filterColumn")
		req.FilterValue = c.PostForm("filterValue")
	} else {
		var payload importPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			s.respondError(c, errors.InvalidInput("invalid import payload: "+err.Error()))
			return
		}
		req.Headers = payload.Headers
		req.Rows = payload.Rows
		req.Mappings = payload.Mappings
		req.FilterColumn = payload.FilterColumn
		req.FilterValue = payload.FilterValue
	}

	report, err := s.imports.Import(c.Request.Context(), req)
	if report == nil {
		s.respondError(c, err)
		return
	}

	body := gin.H{
		"success":          true,
		"imported":         report.Imported,
		"skipped":          report.Skipped,
		"validationFailed": report.ValidationFailed,
		"tasks":            report.Tasks,
		"rowErrors":        report.RowErrors,
	}
	status := http.StatusOK

	switch {
	case err != nil:
		s.logger.Error("[Import] aborted after %d rows: %v", report.Processed(), err)
		status = errors.HTTPStatus(err)
		body["success"] = false
		body["error"] = err.Error()
	case report.Imported == 0 && len(req.Rows) > 0:
		status = http.StatusUnprocessableEntity
		body["success"] = false
		body["error"] = "no rows could be imported"
	}

	c.JSON(status, body)
}
