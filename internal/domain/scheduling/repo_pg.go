package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const apptCols = `a.id, a.patient_id, a.doctor_id, a.date, a.time, a.reason, a.status, a.notes,
	a.created_at, a.updated_at, p.name, d.name`

const apptFrom = ` FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, time, reason, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status, a.Notes,
	)
	if db.IsUniqueViolation(err, "appointments_active_slot_idx") {
		return apperr.Conflict("the doctor already has an appointment at this date and time")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET
			patient_id=$2, doctor_id=$3, date=$4, time=$5, reason=$6, status=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status, a.Notes,
	)
	if db.IsUniqueViolation(err, "appointments_active_slot_idx") {
		return apperr.Conflict("the doctor already has an appointment at this date and time")
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func buildFilter(f Filter) (string, []interface{}, int) {
	where := ""
	args := []interface{}{}
	idx := 1

	add := func(clause string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, idx)
		args = append(args, value)
		idx++
	}

	if f.PatientID != nil {
		add("a.patient_id = $%d", *f.PatientID)
	}
	if f.DoctorID != nil {
		add("a.doctor_id = $%d", *f.DoctorID)
	}
	if f.Date != nil {
		add("a.date = $%d", *f.Date)
	}
	if f.Status != "" {
		add("a.status = $%d", f.Status)
	}
	return where, args, idx
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where, args, idx := buildFilter(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+apptFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + apptFrom + where +
		fmt.Sprintf(` ORDER BY a.date, a.time LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

func (r *repoPG) HasActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeSlot string, exclude *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND time = $3 AND status <> $4`
	args := []interface{}{doctorID, date, timeSlot, StatusCancelled}
	if exclude != nil {
		query += ` AND id <> $5`
		args = append(args, *exclude)
	}
	query += `)`

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

func (r *repoPG) CountByStatus(ctx context.Context, f Filter) (map[string]int, error) {
	where, args, _ := buildFilter(f)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT a.status, COUNT(*)`+apptFrom+where+` GROUP BY a.status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Reason, &a.Status, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt, &a.PatientName, &a.DoctorName,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
