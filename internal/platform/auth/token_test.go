package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	doctorID := uuid.New()
	p := Principal{
		UserID:   uuid.New(),
		Username: "drgarcia",
		Email:    "garcia@clinica.test",
		Name:     "Dr. Garcia",
		Role:     RoleDoctor,
		DoctorID: &doctorID,
	}

	token, err := issuer.Issue(p)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != p.UserID {
		t.Errorf("UserID = %v, want %v", got.UserID, p.UserID)
	}
	if got.Role != RoleDoctor {
		t.Errorf("Role = %v, want %v", got.Role, RoleDoctor)
	}
	if got.DoctorID == nil || *got.DoctorID != doctorID {
		t.Errorf("DoctorID = %v, want %v", got.DoctorID, doctorID)
	}
	if got.Email != p.Email || got.Username != p.Username || got.Name != p.Name {
		t.Errorf("identity fields not preserved: %+v", got)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	issuer.expiry = -time.Minute

	token, err := issuer.Issue(Principal{UserID: uuid.New(), Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	other := NewTokenIssuer([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue(Principal{UserID: uuid.New(), Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Error("expected malformed token to be rejected")
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	token, err := issuer.Issue(Principal{UserID: uuid.New(), Role: Role("superuser")})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected token with unknown role to be rejected")
	}
}
