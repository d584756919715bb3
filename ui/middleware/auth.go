package middleware

import (
	"net/http"

	"gotasks/domain/core"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the caller's user ID
const UserHeader = "X-User-ID"

const userKey = "userID"

// RequireUser resolves the acting user from the X-User-ID header. In single-user
// mode a missing header falls back to the default user; otherwise it is a 401.
func RequireUser(singleUserMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		if raw == "" {
			if !singleUserMode {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing " + UserHeader + " header"})
				return
			}
			c.Set(userKey, core.DefaultUserID)
			c.Next()
			return
		}

		userID, err := core.ParseUserID(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Set(userKey, userID)
		c.Next()
	}
}

// UserID returns the user resolved by RequireUser
func UserID(c *gin.Context) (core.UserID, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return "", false
	}
	id, ok := v.(core.UserID)
	return id, ok
}
