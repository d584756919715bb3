package ui

import (
	"gotasks/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError writes err with the status its code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    errors.GetCode(err),
	})
}
