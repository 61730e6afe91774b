package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/identity"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

const minPasswordLen = 6

// TxRunner executes fn atomically; tests pass nil for a plain passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type Service struct {
	repo     Repository
	patients PatientCreator
	doctors  DoctorCreator
	tx       TxRunner
	audit    *audit.Recorder
}

func NewService(repo Repository, patients PatientCreator, doctors DoctorCreator, tx TxRunner, rec *audit.Recorder) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, patients: patients, doctors: doctors, tx: tx, audit: rec}
}

// CreateParams carries the fields for an admin-created account. DNI and
// Phone feed the linked patient record when Role is patient.
type CreateParams struct {
	Email    string
	Username *string
	Password string
	Name     string
	Role     auth.Role
	DNI      string
	Phone    *string
}

// Create registers an account with status active. Accounts with role patient
// get a linked Patient record created in the same transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	var fields []apperr.FieldError
	if !strings.Contains(params.Email, "@") {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "a valid email is required"})
	}
	if len(params.Password) < minPasswordLen {
		fields = append(fields, apperr.FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)})
	}
	if params.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if !auth.ValidRole(params.Role) {
		fields = append(fields, apperr.FieldError{Field: "role", Message: "unknown role"})
	}
	if params.Role == auth.RolePatient && params.DNI == "" {
		fields = append(fields, apperr.FieldError{Field: "dni", Message: "dni is required for patient accounts"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid user", fields...)
	}

	if err := s.checkUnique(ctx, params.Email, params.Username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, apperr.Internal("could not hash password", err)
	}

	u := &User{
		Email:        strings.ToLower(params.Email),
		Username:     params.Username,
		PasswordHash: hash,
		Name:         params.Name,
		Role:         params.Role,
		Status:       StatusActive,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if params.Role == auth.RolePatient {
			p := &identity.Patient{
				Name:   params.Name,
				DNI:    params.DNI,
				Phone:  params.Phone,
				Active: true,
			}
			if email := strings.ToLower(params.Email); email != "" {
				p.Email = &email
			}
			if err := s.patients.Create(ctx, p); err != nil {
				return err
			}
			u.PatientID = &p.ID
		}
		return s.repo.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.audit.RecordFor(ctx, audit.ActionCreate, "user", fmt.Sprintf("created user %s (%s)", u.Email, u.Role))
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

// UpdateParams carries a partial account update. Password, when set, is
// rehashed; all other writes leave the stored hash alone.
type UpdateParams struct {
	Email    *string
	Username *string
	Password *string
	Name     *string
	Role     *auth.Role
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil && strings.ToLower(*params.Email) != u.Email {
		if !strings.Contains(*params.Email, "@") {
			return nil, apperr.Validation("invalid user",
				apperr.FieldError{Field: "email", Message: "a valid email is required"})
		}
		u.Email = strings.ToLower(*params.Email)
	}
	if params.Username != nil {
		u.Username = params.Username
	}
	if err := s.checkUnique(ctx, u.Email, u.Username, u.ID); err != nil {
		return nil, err
	}
	if params.Name != nil && *params.Name != "" {
		u.Name = *params.Name
	}
	if params.Role != nil {
		if !auth.ValidRole(*params.Role) {
			return nil, apperr.Validation("invalid user",
				apperr.FieldError{Field: "role", Message: "unknown role"})
		}
		if u.Role == auth.RoleAdmin && *params.Role != auth.RoleAdmin && u.Status == StatusActive {
			if err := s.guardLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		u.Role = *params.Role
	}
	if params.Password != nil {
		if len(*params.Password) < minPasswordLen {
			return nil, apperr.Validation("invalid user",
				apperr.FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)})
		}
		hash, err := HashPassword(*params.Password)
		if err != nil {
			return nil, apperr.Internal("could not hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "user", fmt.Sprintf("updated user %s", u.Email))
	return u, nil
}

// Delete removes an account. Deleting the last active admin is rejected.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == auth.RoleAdmin && u.Status == StatusActive {
		if err := s.guardLastAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionDelete, "user", fmt.Sprintf("deleted user %s", u.Email))
	return nil
}

// Approve transitions a pending account to active. A doctor account without
// a linked Doctor record gets one provisioned in the same transaction.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status != StatusPending {
		return nil, apperr.Conflict("only pending accounts can be approved")
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if u.Role == auth.RoleDoctor && u.DoctorID == nil {
			d := &identity.Doctor{
				Name:          u.Name,
				Specialty:     "General",
				LicenseNumber: ProvisionalLicense(u.ID),
				Active:        true,
			}
			email := u.Email
			d.Email = &email
			if err := s.doctors.Create(ctx, d); err != nil {
				return err
			}
			u.DoctorID = &d.ID
		}
		u.Status = StatusActive
		u.RejectionReason = nil
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.audit.RecordFor(ctx, audit.ActionApprove, "user", fmt.Sprintf("approved user %s", u.Email))
	return u, nil
}

// Reject transitions a pending account to rejected with a reason.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status != StatusPending {
		return nil, apperr.Conflict("only pending accounts can be rejected")
	}
	u.Status = StatusRejected
	if reason != "" {
		u.RejectionReason = &reason
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.audit.RecordFor(ctx, audit.ActionReject, "user", fmt.Sprintf("rejected user %s: %s", u.Email, reason))
	return u, nil
}

// SetStatus toggles an account between active and inactive. Deactivating the
// last active admin is rejected.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*User, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, apperr.Validation("invalid status",
			apperr.FieldError{Field: "status", Message: "status must be active or inactive"})
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == auth.RoleAdmin && u.Status == StatusActive && status == StatusInactive {
		if err := s.guardLastAdmin(ctx); err != nil {
			return nil, err
		}
	}
	u.Status = status
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "user", fmt.Sprintf("set user %s status to %s", u.Email, status))
	return u, nil
}

func (s *Service) guardLastAdmin(ctx context.Context) error {
	n, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperr.Conflict("at least one active admin must remain")
	}
	return nil
}

func (s *Service) checkUnique(ctx context.Context, email string, username *string, selfID uuid.UUID) error {
	if other, err := s.repo.GetByEmail(ctx, strings.ToLower(email)); err == nil && other != nil && other.ID != selfID {
		return apperr.Conflict("a user with this email already exists")
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if username != nil && *username != "" {
		if other, err := s.repo.GetByUsername(ctx, *username); err == nil && other != nil && other.ID != selfID {
			return apperr.Conflict("a user with this username already exists")
		} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return err
		}
	}
	return nil
}

// ProvisionalLicense fills the unique license slot for auto-provisioned
// doctors until an admin records the real number.
func ProvisionalLicense(userID uuid.UUID) string {
	return "PEND-" + userID.String()[:8]
}
