// Package response implements the JSON envelope used by every endpoint:
// {success, message, data?, errors?}.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: msg, Data: data})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler returns the centralized echo error handler. Typed apperr
// values map to their status codes; anything else becomes a generic 500.
// Full detail is logged only outside production.
func ErrorHandler(logger zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		env := Envelope{Success: false, Message: "internal server error"}

		var ae *apperr.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status = statusFor(ae.Kind)
			env.Message = ae.Message
			if len(ae.Fields) > 0 {
				env.Errors = ae.Fields
			}
			if ae.Kind == apperr.KindInternal {
				env.Message = "internal server error"
			}
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				env.Message = m
			}
		}

		if status >= http.StatusInternalServerError && !production {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, env)
	}
}
