package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telegram-task-relay/pkg/log"
)

// HeaderRequestID carries the trace ID in both directions.
const HeaderRequestID = "X-Request-ID"

// Trace puts a trace ID on the request context, reusing the caller's X-Request-ID when present.
func (m Middleware) Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(HeaderRequestID, traceID)
		c.Request = c.Request.WithContext(log.WithTraceID(c.Request.Context(), traceID))
		c.Next()
	}
}

// AccessLog logs one line per request.
func (m Middleware) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.l.Infof(c.Request.Context(), "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
