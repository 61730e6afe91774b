package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/db"
)

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

// Amounts travel as text so NUMERIC precision never passes through a float.
const invoiceCols = `id, patient_id, patient_name, concept, amount::text, date, status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoices (id, patient_id, patient_name, concept, amount, date, status)
		VALUES ($1,$2,$3,$4,$5::numeric,$6,$7)`,
		inv.ID, inv.PatientID, inv.PatientName, inv.Concept, inv.Amount.String(), inv.Date, inv.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("invoice not found")
	}
	return inv, err
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoices SET
			patient_id=$2, patient_name=$3, concept=$4, amount=$5::numeric, date=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		inv.ID, inv.PatientID, inv.PatientName, inv.Concept, inv.Amount.String(), inv.Date, inv.Status,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Invoice, int, error) {
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

	if v, ok := params["status"]; ok && v != "" {
		addFilter("status = $%d", v)
	}
	if v, ok := params["patient_id"]; ok && v != "" {
		addFilter("patient_id = $%d", v)
	}
	if v, ok := params["patient_name"]; ok && v != "" {
		addFilter("patient_name ILIKE $%d", "%"+v+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invoiceCols + ` FROM invoices` + where +
		fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repoPG) Summarize(ctx context.Context) (*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(amount), 0)::text FROM invoices GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sum := &Summary{Total: decimal.Zero, ByStatus: make(map[string]StatusTotal)}
	for rows.Next() {
		var status, amountStr string
		var count int
		if err := rows.Scan(&status, &count, &amountStr); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, err
		}
		sum.ByStatus[status] = StatusTotal{Count: count, Amount: amount}
		sum.Count += count
		sum.Total = sum.Total.Add(amount)
	}
	return sum, rows.Err()
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var amountStr string
	err := row.Scan(
		&inv.ID, &inv.PatientID, &inv.PatientName, &inv.Concept, &amountStr,
		&inv.Date, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
