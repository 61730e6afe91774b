package audit

import (
	"time"

	"github.com/google/uuid"
)

// Common audit actions. Action is free text; these are the values written by
// the application itself.
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionLogin   = "LOGIN"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted by the application.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ActorID    uuid.UUID `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	Details    string    `json:"details"`
}
