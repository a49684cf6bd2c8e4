package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderXUserID carries the authenticated user id set by the
	// upstream gateway. This service never terminates sessions itself.
	HeaderXUserID = "X-User-ID"

	ContextUserID = "user_id"
)

// RequireIdentity rejects requests that arrive without an upstream
// identity. Patient linkage is checked separately by the booking
// service.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderXUserID)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:      http.StatusUnauthorized,
				Message:   "missing or invalid identity",
				RequestID: c.GetString(ContextRequestID),
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID reads the identity set by RequireIdentity.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
