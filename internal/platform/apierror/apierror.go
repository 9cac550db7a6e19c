// Package apierror renders the JSON error bodies returned by every endpoint.
package apierror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestIDKey is the echo context key holding the request id.
// middleware.RequestIDKey aliases it.
const RequestIDKey = "request_id"

// Body is the wire shape of an error response.
type Body struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// New builds an error body without a detail string.
func New(message string) Body {
	return Body{Error: message}
}

// WithDetail builds an error body carrying a diagnostic detail string.
func WithDetail(message, detail string) Body {
	return Body{Error: message, Detail: detail}
}

// Write sends an error body with the given status unless the response has
// already been committed.
func Write(c echo.Context, status int, body Body) error {
	if c.Response().Committed {
		return nil
	}
	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}
	return c.JSON(status, body)
}

// ErrorHandler renders errors that escape handlers and middleware. An
// *echo.HTTPError keeps its status and message; anything else is a 500.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		status := http.StatusInternalServerError
		message := http.StatusText(status)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get(RequestIDKey).(string)
			logger.Error().Err(err).Str("request_id", rid).Int("status", status).Msg("request failed")
		}

		if werr := Write(c, status, New(message)); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
