package clinicconfig

import "context"

type Repository interface {
	// Get returns the singleton row, or a NotFound error when it has never
	// been written.
	Get(ctx context.Context) (*Config, error)
	// Upsert writes the singleton row, creating it when absent.
	Upsert(ctx context.Context, cfg *Config) error
}
