package audit

import "context"

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	// List returns the newest entries first. Listings are capped regardless
	// of the requested limit.
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Entry, int, error)
}
