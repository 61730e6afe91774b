package middleware

import (
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

// Recovery turns a panicking handler into a logged 500. The typed error goes
// through the central error handler, so the client sees the usual generic
// envelope.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					rid, _ := c.Get("request_id").(string)
					logger.Error().
						Str("request_id", rid).
						Str("method", c.Request().Method).
						Str("path", c.Request().URL.Path).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					err = apperr.New(apperr.KindInternal, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
