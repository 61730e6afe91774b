package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusVoided  = "voided"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusVoided:
		return true
	}
	return false
}

// Invoice bills a patient for a service. PatientName is snapshotted at
// creation so the invoice survives the patient record being deleted, at which
// point PatientID goes null.
type Invoice struct {
	ID          uuid.UUID       `json:"id"`
	PatientID   *uuid.UUID      `json:"patient_id,omitempty"`
	PatientName string          `json:"patient_name"`
	Concept     string          `json:"concept"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StatusTotal is one line of the billing summary.
type StatusTotal struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary aggregates invoice counts and amounts grouped by status.
type Summary struct {
	Count    int                    `json:"count"`
	Total    decimal.Decimal        `json:"total"`
	ByStatus map[string]StatusTotal `json:"by_status"`
}
