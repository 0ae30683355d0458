package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

const (
	rateLimitProblemType  = "https://matchme.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// ProblemDetails represents an RFC 9457 compatible error payload for rate limits.
type ProblemDetails struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Instance   string         `json:"instance"`
	RetryAfter int            `json:"retry_after"`
	TraceID    string         `json:"trace_id,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// RateLimit enforces the named operation's quota for every request passing
// through it. The limiter fails open, so requests are only rejected on a
// definitive deny.
func RateLimit(limiter *usecase.Limiter, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		subject := usecase.Subject{
			UserID: CurrentUserID(c),
			IP:     c.ClientIP(),
		}

		decision := limiter.Check(c.Request.Context(), operation, subject)
		ApplyRateLimitHeaders(c, decision)

		if !decision.Allowed {
			respondRateLimited(c, decision)
			return
		}

		c.Next()
	}
}

// ApplyRateLimitHeaders writes the standard X-RateLimit headers for a decision.
func ApplyRateLimitHeaders(c *gin.Context, decision usecase.Decision) {
	if decision.Limit <= 0 {
		return
	}

	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(decision.Remaining, 0)))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

	if !decision.Allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(decision)))
	}
}

func respondRateLimited(c *gin.Context, decision usecase.Decision) {
	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	problem := ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     decision.Message,
		Instance:   instance,
		RetryAfter: retrySeconds(decision),
		TraceID:    GetTraceID(c),
		Extensions: map[string]any{
			"scope": string(decision.Scope),
		},
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, problem)
}

func retrySeconds(decision usecase.Decision) int {
	seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	return seconds
}
