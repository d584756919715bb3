package ui

import (
	"net/http"

	"gotasks/domain/sheet"
	"gotasks/internal/errors"

	"github.com/gin-gonic/gin"
)

// GoogleTokenHeader carries the caller's Google OAuth access token
const GoogleTokenHeader = "X-Google-Access-Token"

// fetchPayload names the spreadsheet to load
type fetchPayload struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range"`
}

func (s *Server) handleFetchSheet(c *gin.Context) {
	var payload fetchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondError(c, errors.InvalidInput("invalid fetch payload: "+err.Error()))
		return
	}

	remote, err := s.sheets.Fetch(c.Request.Context(), sheet.RemoteRequest{
		SpreadsheetID: payload.SpreadsheetID,
		Range:         payload.Range,
		AccessToken:   c.GetHeader(GoogleTokenHeader),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": remote})
}
