package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type Service struct {
	repo     Repository
	patients PatientDirectory
	audit    *audit.Recorder
}

func NewService(repo Repository, patients PatientDirectory, rec *audit.Recorder) *Service {
	return &Service{repo: repo, patients: patients, audit: rec}
}

// Create validates the invoice and snapshots the patient name. The amount
// must be strictly positive.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	var fields []apperr.FieldError
	if inv.Concept == "" {
		fields = append(fields, apperr.FieldError{Field: "concept", Message: "concept is required"})
	}
	if inv.Amount.LessThanOrEqual(decimal.Zero) {
		fields = append(fields, apperr.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if inv.Date.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "date is required"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid invoice", fields...)
	}
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	if !ValidStatus(inv.Status) {
		return apperr.Validation("invalid invoice",
			apperr.FieldError{Field: "status", Message: "unknown status"})
	}

	if inv.PatientID != nil {
		p, err := s.patients.GetByID(ctx, *inv.PatientID)
		if err != nil {
			return err
		}
		inv.PatientName = p.Name
	} else if inv.PatientName == "" {
		return apperr.Validation("invalid invoice",
			apperr.FieldError{Field: "patient_name", Message: "patient_name is required when patient_id is absent"})
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionCreate, "invoice",
		fmt.Sprintf("created invoice for %s, amount %s", inv.PatientName, inv.Amount.StringFixed(2)))
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a full update of the mutable fields. The patient snapshot
// is refreshed only when the patient reference changes.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	existing, err := s.repo.GetByID(ctx, inv.ID)
	if err != nil {
		return err
	}
	if inv.Concept == "" {
		return apperr.Validation("invalid invoice",
			apperr.FieldError{Field: "concept", Message: "concept is required"})
	}
	if inv.Amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("invalid invoice",
			apperr.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if !ValidStatus(inv.Status) {
		return apperr.Validation("invalid invoice",
			apperr.FieldError{Field: "status", Message: "unknown status"})
	}

	patientChanged := (inv.PatientID == nil) != (existing.PatientID == nil) ||
		(inv.PatientID != nil && existing.PatientID != nil && *inv.PatientID != *existing.PatientID)
	if patientChanged && inv.PatientID != nil {
		p, err := s.patients.GetByID(ctx, *inv.PatientID)
		if err != nil {
			return err
		}
		inv.PatientName = p.Name
	}
	if inv.PatientName == "" {
		inv.PatientName = existing.PatientName
	}
	if inv.Date.IsZero() {
		inv.Date = existing.Date
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "invoice", fmt.Sprintf("updated invoice %s", inv.ID))
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "invoice", fmt.Sprintf("deleted invoice %s", id))
	return nil
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	return s.repo.Summarize(ctx)
}
