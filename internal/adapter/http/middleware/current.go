package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ct "tasklist/pkg/context"
)

const (
	RequestIDHeader = "X-Request-ID"
	currentKey      = "current"
	userIDKey       = "x-user-id"
)

// CurrentMiddleware attaches a Current to the request, reusing the caller's
// request id when one is sent.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)

		if requestID == "" {
			requestID = uuid.NewString()
		}

		current := ct.NewCurrent(requestID, c.Request.UserAgent(), c.ClientIP())

		c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))
		c.Set(currentKey, current)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func GetCurrent(c *gin.Context) *ct.Current {
	if current, ok := c.Get(currentKey); ok {
		if curr, ok := current.(*ct.Current); ok {
			return curr
		}
	}

	if current, ok := ct.FromContext(c.Request.Context()); ok {
		return current
	}

	return ct.NewCurrent("", c.Request.UserAgent(), c.ClientIP())
}

// UserID returns the id stored by JwtAuthMiddleware.
func UserID(c *gin.Context) (int, bool) {
	value, exists := c.Get(userIDKey)

	if !exists {
		return 0, false
	}

	userID, ok := value.(int)

	return userID, ok && userID > 0
}
