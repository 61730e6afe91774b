package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a person receiving care at the clinic. DNI is the national
// identity document number and must be unique across patients.
type Patient struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	DNI              string     `json:"dni"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	Gender           *string    `json:"gender,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Address          *string    `json:"address,omitempty"`
	BloodType        *string    `json:"blood_type,omitempty"`
	Allergies        *string    `json:"allergies,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Doctor is a clinician who can be booked for appointments. LicenseNumber
// is unique across doctors.
type Doctor struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Specialty     string    `json:"specialty"`
	LicenseNumber string    `json:"license_number"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
