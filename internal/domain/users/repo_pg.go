package users

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

const userCols = `id, email, username, password_hash, name, role, status, rejection_reason,
	doctor_id, patient_id, reset_token, reset_token_exp, last_login, created_at`

func (r *repoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, email, username, password_hash, name, role, status, rejection_reason,
			doctor_id, patient_id, reset_token, reset_token_exp, last_login)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Name, u.Role, u.Status, u.RejectionReason,
		u.DoctorID, u.PatientID, u.ResetToken, u.ResetTokenExp, u.LastLogin,
	)
	if db.IsUniqueViolation(err, "users_email_key") {
		return apperr.Conflict("a user with this email already exists")
	}
	if db.IsUniqueViolation(err, "users_username_key") {
		return apperr.Conflict("a user with this username already exists")
	}
	return err
}

func (r *repoPG) getBy(ctx context.Context, clause string, arg interface{}) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+clause, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	return u, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, `username = $1`, username)
}

func (r *repoPG) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.getBy(ctx, `username = $1 OR email = $1`, identifier)
}

func (r *repoPG) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return r.getBy(ctx, `reset_token = $1`, token)
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			email=$2, username=$3, password_hash=$4, name=$5, role=$6, status=$7, rejection_reason=$8,
			doctor_id=$9, patient_id=$10, reset_token=$11, reset_token_exp=$12, last_login=$13
		WHERE id = $1`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Name, u.Role, u.Status, u.RejectionReason,
		u.DoctorID, u.PatientID, u.ResetToken, u.ResetTokenExp, u.LastLogin,
	)
	if db.IsUniqueViolation(err, "users_email_key") {
		return apperr.Conflict("a user with this email already exists")
	}
	if db.IsUniqueViolation(err, "users_username_key") {
		return apperr.Conflict("a user with this username already exists")
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
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

	if v, ok := params["role"]; ok && v != "" {
		addFilter("role = $%d", v)
	}
	if v, ok := params["status"]; ok && v != "" {
		addFilter("status = $%d", v)
	}
	if v, ok := params["name"]; ok && v != "" {
		addFilter("name ILIKE $%d", "%"+v+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userCols + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *repoPG) CountActiveAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'admin' AND status = 'active'`).Scan(&n)
	return n, err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.RejectionReason,
		&u.DoctorID, &u.PatientID, &u.ResetToken, &u.ResetTokenExp, &u.LastLogin, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
