package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record is one entry in a patient's medical history. Both the patient and
// the authoring doctor must exist when the record is created.
type Record struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	Date         time.Time `json:"date"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    *string   `json:"treatment,omitempty"`
	Prescription *string   `json:"prescription,omitempty"`
	Attachments  []string  `json:"attachments"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}
