package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, email, display_name, focus_course_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*models.User, error) {
	u := &models.User{}
	var focus sql.NullString
	dest := append([]any{&u.ID, &u.Email, &u.DisplayName, &focus, &u.CreatedAt, &u.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if focus.Valid {
		u.FocusCourseID = &focus.String
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query :=
		`INSERT INTO users (id, email, password_hash, display_name, focus_course_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Email, a.PasswordHash, a.DisplayName, a.FocusCourseID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getAccount(ctx context.Context, where string, arg any) (*Account, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE ` + where + ` = $1`

	var hash string
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg), &hash)
	if err != nil {
		return nil, err
	}
	return &Account{User: *u, PasswordHash: hash}, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getAccount(ctx, "email", email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.getAccount(ctx, "id", id)
}

func (r *PostgresRepository) UpdateDisplayName(ctx context.Context, id, name string, now time.Time) (*models.User, error) {
	query :=
		`UPDATE users SET display_name = $2, updated_at = $3
		 WHERE id = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, name, now))
}

func (r *PostgresRepository) SetFocusCourse(ctx context.Context, id string, courseID *string, now time.Time) (*models.User, error) {
	query :=
		`UPDATE users SET focus_course_id = $2, updated_at = $3
		 WHERE id = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, courseID, now))
}

func (r *PostgresRepository) ClearFocusCourse(ctx context.Context, courseID string) error {
	query := `UPDATE users SET focus_course_id = NULL WHERE focus_course_id = $1`

	if _, err := r.db.ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
