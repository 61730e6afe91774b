package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

type mockRepo struct {
	entries []*Entry
	failing bool
}

func (m *mockRepo) Insert(_ context.Context, e *Entry) error {
	if m.failing {
		return errors.New("db down")
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func TestRecordFillsActorFromPrincipal(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	p := auth.Principal{UserID: uuid.New(), Name: "Admin"}
	ctx := auth.WithPrincipal(context.Background(), p)
	rec.RecordFor(ctx, ActionCreate, "patient", "created patient 12345678")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ActorID != p.UserID || e.ActorName != "Admin" {
		t.Errorf("actor fields not filled: %+v", e)
	}
	if e.Action != ActionCreate || e.EntityType != "patient" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestRecordSwallowsWriteFailures(t *testing.T) {
	rec := NewRecorder(&mockRepo{failing: true}, zerolog.Nop())

	// Must not panic or propagate the error.
	rec.Record(context.Background(), Entry{Action: ActionLogin, EntityType: "user"})
}

func TestClampWindow(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, maxListed, 0},
		{"plain page", 50, 100, 50, 100},
		{"oversized limit", 5000, 0, maxListed, 0},
		{"negative offset", 50, -10, 50, 0},
		{"page straddling the cap", 100, 950, 50, 950},
		{"offset past the cap", 100, 1000, 0, 1000},
		{"offset far past the cap", 100, 5000, 0, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := clampWindow(tt.limit, tt.offset)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("clampWindow(%d, %d) = (%d, %d), want (%d, %d)",
					tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
