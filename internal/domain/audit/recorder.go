package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

// Recorder writes audit entries on a best-effort basis. A failed write is
// logged and swallowed so it never fails the operation being audited.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record persists the entry. Call it after the audited operation has
// committed; errors are discarded.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if err := r.repo.Insert(ctx, &e); err != nil {
		r.logger.Error().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Msg("audit write failed")
	}
}

// RecordFor fills the actor fields from the request principal and records
// the action.
func (r *Recorder) RecordFor(ctx context.Context, action, entityType, details string) {
	e := Entry{Action: action, EntityType: entityType, Details: details}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		e.ActorID = p.UserID
		e.ActorName = p.Name
	}
	r.Record(ctx, e)
}
