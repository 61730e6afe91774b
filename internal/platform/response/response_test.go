package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindUnauthorized, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func callErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop(), false)(err, c)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return rec, env
}

func TestErrorHandlerTypedError(t *testing.T) {
	rec, env := callErrorHandler(t, apperr.NotFound("patient not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Message != "patient not found" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestErrorHandlerValidationFields(t *testing.T) {
	err := apperr.Validation("invalid patient",
		apperr.FieldError{Field: "dni", Message: "dni is required"})
	rec, env := callErrorHandler(t, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.Errors == nil {
		t.Error("expected field errors in envelope")
	}
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	err := apperr.Internal("could not reach database", nil)
	rec, env := callErrorHandler(t, err)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if env.Message != "internal server error" {
		t.Errorf("internal message leaked: %q", env.Message)
	}
}

func TestErrorHandlerEchoHTTPError(t *testing.T) {
	rec, env := callErrorHandler(t, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if env.Message != "missing authorization header" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestOKEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := OK(c, "patients", []string{"a"}); err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Success || env.Message != "patients" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
