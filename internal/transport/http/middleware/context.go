package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tarasovcad/matchme-platform/internal/infra/logger"
)

const (
	// TraceIDHeader carries the trace identifier across service hops.
	TraceIDHeader = "X-Trace-ID"
	// RequestIDHeader carries the per-request correlation identifier.
	RequestIDHeader = "X-Request-ID"
	// TraceIDKey is the gin context key for the trace identifier.
	TraceIDKey = "trace_id"
	// UserIDKey is the gin context key for the caller identity.
	UserIDKey = "user_id"

	requestContextKey = "request_context"
)

// RequestContext carries the per-request correlation and identity data read
// by the access log and the handlers.
type RequestContext struct {
	TraceID   string
	RequestID string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext assigns correlation identifiers to the request. Incoming
// X-Trace-ID and X-Request-ID values survive so the edge can stitch requests
// together; missing ones are generated.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := headerOrNew(c, TraceIDHeader)
		requestID := headerOrNew(c, RequestIDHeader)

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Header(RequestIDHeader, requestID)

		c.Set(requestContextKey, &RequestContext{
			TraceID:   traceID,
			RequestID: requestID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func headerOrNew(c *gin.Context, header string) string {
	if value := c.GetHeader(header); value != "" {
		return value
	}
	return uuid.NewString()
}

// GetTraceID returns the request's trace identifier, or empty when the
// enrichment middleware did not run.
func GetTraceID(c *gin.Context) string {
	if value, exists := c.Get(TraceIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext returns the request-scoped context, never nil.
func GetRequestContext(c *gin.Context) *RequestContext {
	if value, exists := c.Get(requestContextKey); exists {
		if reqCtx, ok := value.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
