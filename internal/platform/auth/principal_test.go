package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestPrincipalScope(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()

	tests := []struct {
		name      string
		principal Principal
		wantAll   bool
		wantEmpty bool
	}{
		{"admin", Principal{Role: RoleAdmin}, true, false},
		{"receptionist", Principal{Role: RoleReceptionist}, true, false},
		{"linked doctor", Principal{Role: RoleDoctor, DoctorID: &doctorID}, false, false},
		{"unlinked doctor", Principal{Role: RoleDoctor}, false, true},
		{"linked patient", Principal{Role: RolePatient, PatientID: &patientID}, false, false},
		{"unlinked patient", Principal{Role: RolePatient}, false, true},
		{"unknown role", Principal{Role: Role("bogus")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.principal.Scope()
			if s.All != tt.wantAll {
				t.Errorf("All = %v, want %v", s.All, tt.wantAll)
			}
			if s.Empty() != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", s.Empty(), tt.wantEmpty)
			}
		})
	}
}

func TestScopeCanSee(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()
	otherDoctor := uuid.New()
	otherPatient := uuid.New()

	tests := []struct {
		name  string
		scope Scope
		want  bool
	}{
		{"all sees everything", Scope{All: true}, true},
		{"doctor sees own", Scope{DoctorID: &doctorID}, true},
		{"doctor blocked from others", Scope{DoctorID: &otherDoctor}, false},
		{"patient sees own", Scope{PatientID: &patientID}, true},
		{"patient blocked from others", Scope{PatientID: &otherPatient}, false},
		{"empty scope sees nothing", Scope{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.CanSee(doctorID, patientID); got != tt.want {
				t.Errorf("CanSee = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := Principal{UserID: uuid.New(), Role: RoleAdmin, Name: "Admin"}
	ctx := WithPrincipal(context.Background(), p)

	got, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if got.UserID != p.UserID {
		t.Errorf("UserID = %v, want %v", got.UserID, p.UserID)
	}

	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Error("expected no principal in empty context")
	}
}
