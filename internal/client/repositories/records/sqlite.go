package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, kind Kind, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (kind, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(kind), rec.ID, rec.Data, rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to put %s[%s]: %w", kind, rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, kind Kind, id string) (*Record, error) {
	rec := &Record{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM records WHERE kind = ? AND id = ?`, string(kind), id,
	).Scan(&rec.Data, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", kind, id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, kind Kind) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data, updated_at FROM records WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	result := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Data, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", kind, err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, kind Kind, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", kind, id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, kind Kind) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", kind, err)
	}
	return nil
}
