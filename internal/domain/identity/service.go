package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	audit    *audit.Recorder
}

func NewService(patients PatientRepository, doctors DoctorRepository, rec *audit.Recorder) *Service {
	return &Service{patients: patients, doctors: doctors, audit: rec}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	var fields []apperr.FieldError
	if p.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if p.DNI == "" {
		fields = append(fields, apperr.FieldError{Field: "dni", Message: "dni is required"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid patient", fields...)
	}
	if existing, err := s.patients.GetByDNI(ctx, p.DNI); err == nil && existing != nil {
		return apperr.Conflict("a patient with this DNI already exists")
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	p.Active = true
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionCreate, "patient", fmt.Sprintf("created patient %s (DNI %s)", p.Name, p.DNI))
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" || p.DNI == "" {
		return apperr.Validation("invalid patient",
			apperr.FieldError{Field: "name", Message: "name and dni are required"})
	}
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.DNI != p.DNI {
		if other, err := s.patients.GetByDNI(ctx, p.DNI); err == nil && other != nil && other.ID != p.ID {
			return apperr.Conflict("a patient with this DNI already exists")
		} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return err
		}
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "patient", fmt.Sprintf("updated patient %s", p.Name))
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "patient", fmt.Sprintf("deleted patient %s", p.Name))
	return nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	var fields []apperr.FieldError
	if d.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if d.Specialty == "" {
		fields = append(fields, apperr.FieldError{Field: "specialty", Message: "specialty is required"})
	}
	if d.LicenseNumber == "" {
		fields = append(fields, apperr.FieldError{Field: "license_number", Message: "license_number is required"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid doctor", fields...)
	}
	if existing, err := s.doctors.GetByLicense(ctx, d.LicenseNumber); err == nil && existing != nil {
		return apperr.Conflict("a doctor with this license number already exists")
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	d.Active = true
	if err := s.doctors.Create(ctx, d); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionCreate, "doctor", fmt.Sprintf("created doctor %s (%s)", d.Name, d.Specialty))
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" || d.Specialty == "" || d.LicenseNumber == "" {
		return apperr.Validation("invalid doctor",
			apperr.FieldError{Field: "name", Message: "name, specialty and license_number are required"})
	}
	existing, err := s.doctors.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if existing.LicenseNumber != d.LicenseNumber {
		if other, err := s.doctors.GetByLicense(ctx, d.LicenseNumber); err == nil && other != nil && other.ID != d.ID {
			return apperr.Conflict("a doctor with this license number already exists")
		} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return err
		}
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "doctor", fmt.Sprintf("updated doctor %s", d.Name))
	return nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "doctor", fmt.Sprintf("deleted doctor %s", d.Name))
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) SearchDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.Search(ctx, params, limit, offset)
}
