package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("missing"), KindNotFound},
		{"conflict", Conflict("duplicate"), KindConflict},
		{"forbidden", Forbidden("no"), KindForbidden},
		{"unauthorized", Unauthorized("who"), KindUnauthorized},
		{"validation", Validation("bad input"), KindValidation},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrapped in fmt", fmt.Errorf("context: %w", NotFound("missing")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := NotFound("missing")
	if !IsKind(err, KindNotFound) {
		t.Error("expected IsKind to match")
	}
	if IsKind(err, KindConflict) {
		t.Error("expected IsKind to reject a different kind")
	}
	if IsKind(nil, KindInternal) {
		t.Error("expected IsKind(nil) to be false")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "query failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationFields(t *testing.T) {
	err := Validation("invalid input",
		FieldError{Field: "name", Message: "name is required"},
		FieldError{Field: "email", Message: "a valid email is required"},
	)
	if len(err.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Fields))
	}
	if err.Fields[0].Field != "name" {
		t.Errorf("first field = %q, want name", err.Fields[0].Field)
	}
}
