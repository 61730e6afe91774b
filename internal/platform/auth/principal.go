package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role is the fixed set of account roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// Principal is the authenticated identity attached to a request after token
// verification.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	Email     string
	Name      string
	Role      Role
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// Scope is the capability variant resolved from a principal's role. Every
// role-scoped read/write path consumes a Scope instead of branching on the
// role string directly.
type Scope struct {
	// All grants unrestricted access (admin, receptionist).
	All bool
	// DoctorID restricts access to records owned by this doctor.
	DoctorID *uuid.UUID
	// PatientID restricts access to records owned by this patient.
	PatientID *uuid.UUID
}

// Scope resolves the capability variant for the principal.
func (p Principal) Scope() Scope {
	switch p.Role {
	case RoleAdmin, RoleReceptionist:
		return Scope{All: true}
	case RoleDoctor:
		return Scope{DoctorID: p.DoctorID}
	case RolePatient:
		return Scope{PatientID: p.PatientID}
	}
	return Scope{}
}

// Empty reports whether the scope grants no access at all. This happens for
// a doctor or patient account whose linked record is missing.
func (s Scope) Empty() bool {
	return !s.All && s.DoctorID == nil && s.PatientID == nil
}

// CanSee reports whether a record owned by the given doctor and patient is
// visible under this scope.
func (s Scope) CanSee(doctorID, patientID uuid.UUID) bool {
	if s.All {
		return true
	}
	if s.DoctorID != nil {
		return *s.DoctorID == doctorID
	}
	if s.PatientID != nil {
		return *s.PatientID == patientID
	}
	return false
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
