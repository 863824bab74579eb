package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key holding the request identifier.
	RequestIDKey = "request_id"

	requestIDHeader = "X-Request-Id"
)

// RequestIDMiddleware propagates the caller's X-Request-Id or assigns a fresh
// one, echoing it on the response so clients can correlate logs.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Set(RequestIDKey, reqID)
		c.Next()
	}
}
