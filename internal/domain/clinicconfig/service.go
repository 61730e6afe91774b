package clinicconfig

import (
	"context"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type Service struct {
	repo  Repository
	audit *audit.Recorder
}

func NewService(repo Repository, rec *audit.Recorder) *Service {
	return &Service{repo: repo, audit: rec}
}

// Get returns the clinic configuration, materializing the defaults on first
// read.
func (s *Service) Get(ctx context.Context) (*Config, error) {
	cfg, err := s.repo.Get(ctx)
	if apperr.IsKind(err, apperr.KindNotFound) {
		cfg = Defaults()
		if err := s.repo.Upsert(ctx, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

func (s *Service) Update(ctx context.Context, cfg *Config) error {
	if cfg.Name == "" {
		return apperr.Validation("invalid configuration",
			apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, audit.ActionUpdate, "clinic_config", "updated clinic configuration")
	return nil
}
