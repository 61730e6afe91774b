package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/db"
)

// maxListed caps bulk listings of the audit log.
const maxListed = 1000

// clampWindow bounds a page so that paging never walks past the
// most-recent-1000 window, no matter the offset.
func clampWindow(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxListed {
		limit = maxListed
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= maxListed {
		return 0, offset
	}
	if offset+limit > maxListed {
		limit = maxListed - offset
	}
	return limit, offset
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Insert(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, actor_name, action, entity_type, details)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.ActorID, e.ActorName, e.Action, e.EntityType, e.Details,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Entry, int, error) {
	limit, offset = clampWindow(limit, offset)

	where := ""
	args := []interface{}{}
	idx := 1

	addFilter := func(clause string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, idx)
		args = append(args, value)
		idx++
	}

	if v, ok := params["actor_id"]; ok && v != "" {
		addFilter("actor_id = $%d", v)
	}
	if v, ok := params["action"]; ok && v != "" {
		addFilter("action = $%d", v)
	}
	if v, ok := params["entity_type"]; ok && v != "" {
		addFilter("entity_type = $%d", v)
	}
	if v, ok := params["from"]; ok && v != "" {
		addFilter("timestamp >= $%d", v)
	}
	if v, ok := params["to"]; ok && v != "" {
		addFilter("timestamp <= $%d", v)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total > maxListed {
		total = maxListed
	}

	query := `SELECT id, timestamp, actor_id, actor_name, action, entity_type, details FROM audit_log` +
		where + fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &e.ActorName, &e.Action, &e.EntityType, &e.Details); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
