package clinicconfig

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// The table holds at most one row, pinned to id = 1.

func (r *repoPG) Get(ctx context.Context) (*Config, error) {
	var cfg Config
	err := r.pool.QueryRow(ctx, `
		SELECT name, address, phone, email, business_hours, currency_symbol, logo_url, updated_at
		FROM clinic_config WHERE id = 1`).Scan(
		&cfg.Name, &cfg.Address, &cfg.Phone, &cfg.Email,
		&cfg.BusinessHours, &cfg.CurrencySymbol, &cfg.LogoURL, &cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic configuration not set")
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repoPG) Upsert(ctx context.Context, cfg *Config) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinic_config (id, name, address, phone, email, business_hours, currency_symbol, logo_url)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			business_hours = EXCLUDED.business_hours,
			currency_symbol = EXCLUDED.currency_symbol,
			logo_url = EXCLUDED.logo_url,
			updated_at = NOW()`,
		cfg.Name, cfg.Address, cfg.Phone, cfg.Email,
		cfg.BusinessHours, cfg.CurrencySymbol, cfg.LogoURL,
	)
	return err
}
