package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// ErrorCase maps one sentinel error to an HTTP status and user-facing message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError writes the error response for err. Throttle errors
// take priority: the limiter headers are applied and the decision's own
// message goes out with a 429. Everything else resolves through cases, then
// the fallback.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var throttled *usecase.ThrottledError
	if errors.As(err, &throttled) {
		middleware.ApplyRateLimitHeaders(c, throttled.Decision)
		c.JSON(http.StatusTooManyRequests, NewErrorResponse(c, throttled.Decision.Message))
		return
	}

	status, message := resolveErrorCase(err, cases, fallbackStatus, fallbackMessage)
	c.JSON(status, NewErrorResponse(c, message))
}

func resolveErrorCase(err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) (int, string) {
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			return cs.Status, cs.Message
		}
	}
	return fallbackStatus, fallbackMessage
}
