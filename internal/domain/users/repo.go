package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/identity"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByIdentifier matches either the username or the email.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error)
	// CountActiveAdmins backs the last-admin guard.
	CountActiveAdmins(ctx context.Context) (int, error)
}

// PatientCreator and DoctorCreator provision the linked records for patient
// and doctor accounts.
type PatientCreator interface {
	Create(ctx context.Context, p *identity.Patient) error
}

type DoctorCreator interface {
	Create(ctx context.Context, d *identity.Doctor) error
}
