package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the key used to store the request ID in the gin context
const RequestIDKey = "request_id"

// RequestID injects an identifier for traceability if the caller did not provide one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestIDFromContext extracts the request identifier if available
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
