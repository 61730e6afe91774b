package scheduling

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

// TxRunner executes fn atomically. In production it wraps db.RunInTx over the
// pool; tests pass nil for a plain passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

var timeSlotRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Service struct {
	repo     Repository
	patients PatientDirectory
	doctors  DoctorDirectory
	tx       TxRunner
	audit    *audit.Recorder
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory, tx TxRunner, rec *audit.Recorder) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, patients: patients, doctors: doctors, tx: tx, audit: rec}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	var fields []apperr.FieldError
	if a.PatientID == uuid.Nil {
		fields = append(fields, apperr.FieldError{Field: "patient_id", Message: "patient_id is required"})
	}
	if a.DoctorID == uuid.Nil {
		fields = append(fields, apperr.FieldError{Field: "doctor_id", Message: "doctor_id is required"})
	}
	if a.Date.IsZero() {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "date is required"})
	}
	if !timeSlotRe.MatchString(a.Time) {
		fields = append(fields, apperr.FieldError{Field: "time", Message: "time must be HH:MM"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid appointment", fields...)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !ValidStatus(a.Status) {
		return apperr.Validation("invalid appointment",
			apperr.FieldError{Field: "status", Message: "unknown status"})
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if ok, err := s.patients.Exists(ctx, a.PatientID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFound("patient not found")
		}
		if ok, err := s.doctors.Exists(ctx, a.DoctorID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFound("doctor not found")
		}
		if busy, err := s.repo.HasActiveSlot(ctx, a.DoctorID, a.Date, a.Time, nil); err != nil {
			return err
		} else if busy {
			return apperr.Conflict("the doctor already has an appointment at this date and time")
		}
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionCreate, "appointment",
		fmt.Sprintf("scheduled appointment on %s at %s", a.Date.Format("2006-01-02"), a.Time))
	return nil
}

func (s *Service) Get(ctx context.Context, scope auth.Scope, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSee(a.DoctorID, a.PatientID) {
		return nil, apperr.Forbidden("you do not have access to this appointment")
	}
	return a, nil
}

// Update applies a partial update. When the doctor, date or time changes, or
// a cancelled appointment is reactivated, the slot conflict check runs again,
// excluding the appointment itself.
func (s *Service) Update(ctx context.Context, scope auth.Scope, id uuid.UUID, params UpdateParams) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSee(a.DoctorID, a.PatientID) {
		return nil, apperr.Forbidden("you do not have access to this appointment")
	}

	wasCancelled := a.Status == StatusCancelled
	slotChanged := false
	if params.PatientID != nil && *params.PatientID != a.PatientID {
		if ok, err := s.patients.Exists(ctx, *params.PatientID); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperr.NotFound("patient not found")
		}
		a.PatientID = *params.PatientID
	}
	if params.DoctorID != nil && *params.DoctorID != a.DoctorID {
		if ok, err := s.doctors.Exists(ctx, *params.DoctorID); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperr.NotFound("doctor not found")
		}
		a.DoctorID = *params.DoctorID
		slotChanged = true
	}
	if params.Date != nil && !params.Date.Equal(a.Date) {
		a.Date = *params.Date
		slotChanged = true
	}
	if params.Time != nil && *params.Time != a.Time {
		if !timeSlotRe.MatchString(*params.Time) {
			return nil, apperr.Validation("invalid appointment",
				apperr.FieldError{Field: "time", Message: "time must be HH:MM"})
		}
		a.Time = *params.Time
		slotChanged = true
	}
	if params.Reason != nil {
		a.Reason = *params.Reason
	}
	if params.Status != nil {
		if !ValidStatus(*params.Status) {
			return nil, apperr.Validation("invalid appointment",
				apperr.FieldError{Field: "status", Message: "unknown status"})
		}
		a.Status = *params.Status
	}
	if params.Notes != nil {
		a.Notes = params.Notes
	}

	// Reactivating a cancelled appointment reclaims its slot, so the slot
	// must be free again.
	reactivated := wasCancelled && a.Status != StatusCancelled

	err = s.tx(ctx, func(ctx context.Context) error {
		if (slotChanged || reactivated) && a.Status != StatusCancelled {
			if busy, err := s.repo.HasActiveSlot(ctx, a.DoctorID, a.Date, a.Time, &a.ID); err != nil {
				return err
			} else if busy {
				return apperr.Conflict("the doctor already has an appointment at this date and time")
			}
		}
		return s.repo.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "appointment", fmt.Sprintf("updated appointment %s", a.ID))
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "appointment", fmt.Sprintf("deleted appointment %s", id))
	return nil
}

// List returns appointments visible within scope. Scope restrictions always
// win over caller-supplied filters.
func (s *Service) List(ctx context.Context, scope auth.Scope, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if scope.Empty() {
		return nil, 0, nil
	}
	return s.repo.List(ctx, scoped(scope, f), limit, offset)
}

func (s *Service) Stats(ctx context.Context, scope auth.Scope) (*Stats, error) {
	if scope.Empty() {
		return &Stats{ByStatus: map[string]int{}}, nil
	}
	counts, err := s.repo.CountByStatus(ctx, scoped(scope, Filter{}))
	if err != nil {
		return nil, err
	}
	st := &Stats{ByStatus: counts}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

func scoped(scope auth.Scope, f Filter) Filter {
	if scope.All {
		return f
	}
	if scope.DoctorID != nil {
		f.DoctorID = scope.DoctorID
	}
	if scope.PatientID != nil {
		f.PatientID = scope.PatientID
	}
	return f
}
