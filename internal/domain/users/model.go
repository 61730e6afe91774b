package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

// Account statuses. New self-registered accounts start pending and need an
// admin to approve them before they can log in.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusRejected:
		return true
	}
	return false
}

// User is an account that can authenticate against the API. DoctorID and
// PatientID link the account to its professional or patient record when the
// role implies one.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Username        *string    `json:"username,omitempty"`
	PasswordHash    string     `json:"-"`
	Name            string     `json:"name"`
	Role            auth.Role  `json:"role"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	DoctorID        *uuid.UUID `json:"doctor_id,omitempty"`
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	ResetToken      *string    `json:"-"`
	ResetTokenExp   *time.Time `json:"-"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Principal builds the token principal for this account.
func (u *User) Principal() auth.Principal {
	username := ""
	if u.Username != nil {
		username = *u.Username
	}
	return auth.Principal{
		UserID:    u.ID,
		Username:  username,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		DoctorID:  u.DoctorID,
		PatientID: u.PatientID,
	}
}
