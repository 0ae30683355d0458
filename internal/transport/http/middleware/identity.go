package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDHeader carries the caller identity resolved by the edge gateway.
// Authentication happens upstream; this service trusts the header as-is.
const userIDHeader = "X-User-ID"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// Identity records the caller identity on the request context when present.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID != "" {
			c.Set(UserIDKey, userID)
			if reqCtx := GetRequestContext(c); reqCtx != nil {
				reqCtx.UserID = userID
			}
		}

		c.Next()
	}
}

// RequireUser rejects requests that arrive without a resolved identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the caller identity, or empty for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	if value, exists := c.Get(UserIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
