package medicalrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type Service struct {
	repo     Repository
	patients PatientDirectory
	doctors  DoctorDirectory
	audit    *audit.Recorder
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, audit: auditor}
}

func (s *Service) Create(ctx context.Context, rec *Record) error {
	var fields []apperr.FieldError
	if rec.PatientID == uuid.Nil {
		fields = append(fields, apperr.FieldError{Field: "patient_id", Message: "patient_id is required"})
	}
	if rec.DoctorID == uuid.Nil {
		fields = append(fields, apperr.FieldError{Field: "doctor_id", Message: "doctor_id is required"})
	}
	if rec.Date.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "date is required"})
	}
	if rec.Diagnosis == "" {
		fields = append(fields, apperr.FieldError{Field: "diagnosis", Message: "diagnosis is required"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid medical record", fields...)
	}

	if ok, err := s.patients.Exists(ctx, rec.PatientID); err != nil {
		return err
	} else if !ok {
		return apperr.NotFound("patient not found")
	}
	if ok, err := s.doctors.Exists(ctx, rec.DoctorID); err != nil {
		return err
	} else if !ok {
		return apperr.NotFound("doctor not found")
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionCreate, "medical_record",
		fmt.Sprintf("created medical record for patient %s", rec.PatientID))
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, rec *Record) error {
	existing, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if rec.Diagnosis == "" {
		return apperr.Validation("invalid medical record",
			apperr.FieldError{Field: "diagnosis", Message: "diagnosis is required"})
	}
	if rec.PatientID != existing.PatientID {
		if ok, err := s.patients.Exists(ctx, rec.PatientID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFound("patient not found")
		}
	}
	if rec.DoctorID != existing.DoctorID {
		if ok, err := s.doctors.Exists(ctx, rec.DoctorID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFound("doctor not found")
		}
	}
	if rec.Date.IsZero() {
		rec.Date = existing.Date
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "medical_record", fmt.Sprintf("updated medical record %s", rec.ID))
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "medical_record", fmt.Sprintf("deleted medical record %s", id))
	return nil
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}
