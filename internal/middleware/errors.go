package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/spimexpulse/internal/domain/dto"
	"github.com/guttosm/spimexpulse/internal/logger"
)

// ErrorHandler turns errors attached with c.Error() into a JSON ErrorResponse.
//
// Behavior:
//   - Runs after the handler chain; does nothing when no error was recorded
//     or a body was already written.
//   - An attached dto.ErrorResponse is returned as-is; anything else becomes
//     a generic 500.
//   - A status already set by the handler (>= 400) is kept.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	var resp dto.ErrorResponse
	if !errors.As(last, &resp) {
		resp = dto.NewErrorResponse("Internal server error", last)
	}

	rid, _ := c.Get(RequestIDKey)
	lg := logger.With("http")
	lg.Error().Err(last).Str("request_id", toString(rid)).Int("status", status).Msg("request failed")

	c.JSON(status, resp)
}

// AbortWithError stops the chain and writes a standardized error body.
//
// Example:
//
//	middleware.AbortWithError(c, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD", err)
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
