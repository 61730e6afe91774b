package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// HasActiveSlot reports whether a non-cancelled appointment already occupies
	// the doctor's slot. exclude, when non-nil, skips that appointment id so an
	// update does not conflict with itself.
	HasActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string, exclude *uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, f Filter) (map[string]int, error)
}

// PatientDirectory and DoctorDirectory expose the existence checks the
// scheduling service needs without pulling in the full identity repositories.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type DoctorDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
