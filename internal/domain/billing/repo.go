package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/identity"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error)
	Summarize(ctx context.Context) (*Summary, error)
}

// PatientDirectory resolves the patient referenced by a new invoice.
type PatientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}
