package authn

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/identity"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/users"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/mailer"
)

const (
	minPasswordLen = 6
	resetTokenTTL  = time.Hour
)

// TxRunner executes fn atomically; tests pass nil for a plain passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type DoctorCreator interface {
	Create(ctx context.Context, d *identity.Doctor) error
}

type Service struct {
	repo    users.Repository
	doctors DoctorCreator
	issuer  *auth.TokenIssuer
	sender  mailer.EmailSender
	audit   *audit.Recorder
	tx      TxRunner
}

func NewService(repo users.Repository, doctors DoctorCreator, issuer *auth.TokenIssuer, sender mailer.EmailSender, rec *audit.Recorder, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, doctors: doctors, issuer: issuer, sender: sender, audit: rec, tx: tx}
}

// Login authenticates by username or email. Wrong identifier and wrong
// password are indistinguishable to the caller; account-status problems get
// a role-specific 403 instead.
func (s *Service) Login(ctx context.Context, identifier, password string) (*users.User, string, error) {
	u, err := s.repo.GetByIdentifier(ctx, identifier)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, "", err
	}
	if !users.CheckPassword(u.PasswordHash, password) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	switch u.Status {
	case users.StatusPending:
		return nil, "", apperr.Forbidden("your account is awaiting admin approval")
	case users.StatusRejected:
		msg := "your registration was rejected"
		if u.RejectionReason != nil {
			msg += ": " + *u.RejectionReason
		}
		return nil, "", apperr.Forbidden(msg)
	case users.StatusInactive:
		return nil, "", apperr.Forbidden("your account has been deactivated")
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if u.Role == auth.RoleDoctor && u.DoctorID == nil {
			d := &identity.Doctor{
				Name:          u.Name,
				Specialty:     "General",
				LicenseNumber: users.ProvisionalLicense(u.ID),
				Active:        true,
			}
			email := u.Email
			d.Email = &email
			if err := s.doctors.Create(ctx, d); err != nil {
				return err
			}
			u.DoctorID = &d.ID
		}
		now := time.Now()
		u.LastLogin = &now
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Issue(u.Principal())
	if err != nil {
		return nil, "", apperr.Internal("could not issue token", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    u.ID,
		ActorName:  u.Name,
		Action:     audit.ActionLogin,
		EntityType: "user",
		Details:    fmt.Sprintf("user %s logged in", u.Email),
	})
	return u, token, nil
}

// RegisterParams carries a self-registration request.
type RegisterParams struct {
	Email    string
	Username *string
	Password string
	Name     string
	Role     auth.Role
}

// Register creates a pending account. Only doctor and receptionist accounts
// may self-register; patients are onboarded by staff.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*users.User, error) {
	if params.Role != auth.RoleDoctor && params.Role != auth.RoleReceptionist {
		return nil, apperr.Forbidden("self-registration is limited to doctor and receptionist accounts")
	}

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
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid registration", fields...)
	}

	email := strings.ToLower(params.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("a user with this email already exists")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if params.Username != nil && *params.Username != "" {
		if _, err := s.repo.GetByUsername(ctx, *params.Username); err == nil {
			return nil, apperr.Conflict("a user with this username already exists")
		} else if !apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
	}

	hash, err := users.HashPassword(params.Password)
	if err != nil {
		return nil, apperr.Internal("could not hash password", err)
	}

	u := &users.User{
		Email:        email,
		Username:     params.Username,
		PasswordHash: hash,
		Name:         params.Name,
		Role:         params.Role,
		Status:       users.StatusPending,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    u.ID,
		ActorName:  u.Name,
		Action:     audit.ActionCreate,
		EntityType: "user",
		Details:    fmt.Sprintf("user %s registered as %s, awaiting approval", u.Email, u.Role),
	})
	return u, nil
}

// Verify checks a bearer token and returns the account it belongs to. The
// account must still exist and be active.
func (s *Service) Verify(ctx context.Context, token string) (*users.User, error) {
	p, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, p.UserID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if u.Status != users.StatusActive {
		return nil, apperr.Forbidden("account is not active")
	}
	return u, nil
}

// ForgotPassword issues a single-use reset token valid for one hour and
// mails it to the account. A missing account is not revealed to the caller.
// If the email cannot be sent the token is rolled back.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return apperr.Internal("could not generate reset token", err)
	}
	exp := time.Now().Add(resetTokenTTL)
	u.ResetToken = &token
	u.ResetTokenExp = &exp
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	msg := mailer.Message{
		To:      u.Email,
		ToName:  u.Name,
		Subject: "Recuperacion de contrasena",
		Body: fmt.Sprintf("Hola %s,\n\nUsa este codigo para restablecer tu contrasena: %s\n\nEl codigo vence en una hora.",
			u.Name, token),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		// Roll the token back so a token the user never received cannot
		// linger.
		u.ResetToken = nil
		u.ResetTokenExp = nil
		_ = s.repo.Update(ctx, u)
		return apperr.Internal("could not send the reset email, try again later", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperr.Validation("invalid password",
			apperr.FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)})
	}
	u, err := s.repo.GetByResetToken(ctx, token)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return apperr.Validation("invalid or expired reset token")
	}
	if err != nil {
		return err
	}
	if u.ResetTokenExp == nil || time.Now().After(*u.ResetTokenExp) {
		return apperr.Validation("invalid or expired reset token")
	}

	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("could not hash password", err)
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExp = nil
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    u.ID,
		ActorName:  u.Name,
		Action:     audit.ActionUpdate,
		EntityType: "user",
		Details:    fmt.Sprintf("user %s reset their password", u.Email),
	})
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
