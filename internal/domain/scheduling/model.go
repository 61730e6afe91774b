package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. A slot is only considered occupied by appointments
// whose status is not cancelled.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment books a doctor for a patient on a given date and time slot.
// PatientName and DoctorName are joined on reads and never written.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Date      *time.Time
	Time      *string
	Reason    *string
	Status    *string
	Notes     *string
}

// Filter narrows appointment listings. Zero-value fields are ignored.
type Filter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Date      *time.Time
	Status    string
}

// Stats aggregates appointment counts grouped by status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}
