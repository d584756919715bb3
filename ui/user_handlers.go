package ui

import (
	"net/http"

	"gotasks/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCurrentUser(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	profile, err := s.users.Profile(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}
