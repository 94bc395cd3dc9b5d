package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartrfq/desk/internal/notify"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// ContextKeyRequestID holds the key for the request id in Gin context.
const ContextKeyRequestID = "requestID"

// RequestIDMiddleware reuses the caller's request id or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// NoticesMiddleware attaches a notice collector to the request context so
// handlers can return the notices an action produced.
func NoticesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := notify.Collect(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
