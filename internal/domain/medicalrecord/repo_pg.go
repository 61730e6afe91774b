package medicalrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const recordCols = `r.id, r.patient_id, r.doctor_id, r.date, r.diagnosis, r.treatment,
	r.prescription, r.attachments, r.notes, r.created_at, r.updated_at, p.name, d.name`

const recordFrom = ` FROM medical_records r
	JOIN patients p ON p.id = r.patient_id
	JOIN doctors d ON d.id = r.doctor_id`

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, date, diagnosis, treatment, prescription, attachments, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.Date, rec.Diagnosis, rec.Treatment,
		rec.Prescription, rec.Attachments, rec.Notes,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+recordFrom+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medical record not found")
	}
	return rec, err
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET
			patient_id=$2, doctor_id=$3, date=$4, diagnosis=$5, treatment=$6,
			prescription=$7, attachments=$8, notes=$9, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.Date, rec.Diagnosis, rec.Treatment,
		rec.Prescription, rec.Attachments, rec.Notes,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
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

	if v, ok := params["patient_id"]; ok && v != "" {
		addFilter("r.patient_id = $%d", v)
	}
	if v, ok := params["doctor_id"]; ok && v != "" {
		addFilter("r.doctor_id = $%d", v)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+recordFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordCols + recordFrom + where +
		fmt.Sprintf(` ORDER BY r.date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.Date, &rec.Diagnosis, &rec.Treatment,
		&rec.Prescription, &rec.Attachments, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.PatientName, &rec.DoctorName,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
