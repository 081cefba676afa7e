package pending

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, c *models.PendingChange) error {
	c.EnqueuedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_changes (op, entity, course_id, target_id, payload, enqueued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(c.Op), string(c.Entity), c.CourseID, c.TargetID, []byte(c.Payload), c.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s %s: %w", c.Op, c.Entity, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read pending change id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.PendingChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, op, entity, course_id, target_id, payload, enqueued_at
		FROM pending_changes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	defer rows.Close()

	result := make([]models.PendingChange, 0)
	for rows.Next() {
		var (
			c       models.PendingChange
			op      string
			entity  string
			payload []byte
		)
		if err := rows.Scan(&c.ID, &op, &entity, &c.CourseID, &c.TargetID, &payload, &c.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending change: %w", err)
		}
		c.Op = models.Op(op)
		c.Entity = models.Entity(entity)
		if len(payload) > 0 {
			c.Payload = payload
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending changes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove pending change %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes`); err != nil {
		return fmt.Errorf("failed to clear pending changes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_changes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Rewrite(ctx context.Context, from, to string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pending_changes SET
			course_id = CASE WHEN course_id = ? THEN ? ELSE course_id END,
			target_id = CASE WHEN target_id = ? THEN ? ELSE target_id END
		WHERE course_id = ? OR target_id = ?
	`, from, to, from, to, from, from)
	if err != nil {
		return fmt.Errorf("failed to rewrite pending changes %s->%s: %w", from, to, err)
	}
	return nil
}
