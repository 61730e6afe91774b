package clinicconfig

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type nopAuditRepo struct{}

func (nopAuditRepo) Insert(_ context.Context, _ *audit.Entry) error { return nil }
func (nopAuditRepo) List(_ context.Context, _ map[string]string, _, _ int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, audit.NewRecorder(nopAuditRepo{}, zerolog.Nop()))
}

type mockRepo struct {
	cfg *Config
}

func (m *mockRepo) Get(_ context.Context) (*Config, error) {
	if m.cfg == nil {
		return nil, apperr.NotFound("clinic configuration not set")
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockRepo) Upsert(_ context.Context, cfg *Config) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

func TestGetMaterializesDefaults(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo)

	cfg, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.Name != "Clinica" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if repo.cfg == nil {
		t.Error("expected defaults to be persisted on first read")
	}
}

func TestGetReturnsStoredConfig(t *testing.T) {
	repo := &mockRepo{cfg: &Config{Name: "Clinica San Martin"}}
	svc := newTestService(repo)

	cfg, err := svc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Clinica San Martin" {
		t.Errorf("expected stored name, got %q", cfg.Name)
	}
}

func TestUpdateRequiresName(t *testing.T) {
	svc := newTestService(&mockRepo{})

	err := svc.Update(context.Background(), &Config{})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
