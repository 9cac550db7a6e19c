package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulpai/pulp/internal/platform/apierror"
)

// RequestTimeout attaches a deadline to the request context. Handlers
// observe it through ctx; when a handler returns after the deadline without
// having written a response, a 504 is sent.
//
// The handler is not abandoned mid-flight, so the response writer is never
// shared between goroutines.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Response().Committed {
				return apierror.Write(c, http.StatusGatewayTimeout, apierror.New("request timed out"))
			}
			return err
		}
	}
}
