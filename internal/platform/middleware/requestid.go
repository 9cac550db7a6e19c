package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pulpai/pulp/internal/platform/apierror"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = apierror.RequestIDKey

	maxRequestIDLen = 128
)

// RequestID stores a per-request id under RequestIDKey and echoes it in
// the response header. A caller-supplied id is kept when it is short enough
// to log safely.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = uuid.NewString()
			}
			c.Set(RequestIDKey, rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
