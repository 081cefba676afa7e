package courses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

const (
	courseColumns     = `id, title, description, source, status, notes, tags, created_at, updated_at`
	lectureColumns    = `id, course_id, ord, title, video_url, status, duration_minutes, note, created_at, updated_at`
	assignmentColumns = `id, course_id, title, status, due_date, link, note, created_at, updated_at`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (models.Course, error) {
	var c models.Course
	var tags []byte
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Source, &c.Status, &c.Notes, &tags, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	c.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return c, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	c.Lectures = []models.Lecture{}
	c.Assignments = []models.Assignment{}
	return c, nil
}

func scanLecture(row rowScanner) (models.Lecture, error) {
	var l models.Lecture
	var minutes sql.NullInt64
	if err := row.Scan(&l.ID, &l.CourseID, &l.Order, &l.Title, &l.VideoURL, &l.Status, &minutes, &l.Note, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return l, err
	}
	if minutes.Valid {
		m := int(minutes.Int64)
		l.DurationMinutes = &m
	}
	return l, nil
}

func scanAssignment(row rowScanner) (models.Assignment, error) {
	var a models.Assignment
	var due, link sql.NullString
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Status, &due, &link, &a.Note, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	if due.Valid {
		a.DueDate = &due.String
	}
	if link.Valid {
		a.Link = &link.String
	}
	return a, nil
}

func collect[T any](ctx context.Context, db dbx.DBTX, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Course, error) {
	courses, err := collect(ctx, r.db, scanCourse,
		`SELECT `+courseColumns+` FROM courses WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return []models.Course{}, nil
	}

	lectures, err := collect(ctx, r.db, scanLecture,
		`SELECT `+lectureColumns+` FROM lectures
		 WHERE course_id IN (SELECT id FROM courses WHERE user_id = $1)
		 ORDER BY ord, created_at`, userID)
	if err != nil {
		return nil, err
	}
	assignments, err := collect(ctx, r.db, scanAssignment,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE course_id IN (SELECT id FROM courses WHERE user_id = $1)
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(courses))
	for i, c := range courses {
		index[c.ID] = i
	}
	for _, l := range lectures {
		if i, ok := index[l.CourseID]; ok {
			courses[i].Lectures = append(courses[i].Lectures, l)
		}
	}
	for _, a := range assignments {
		if i, ok := index[a.CourseID]; ok {
			courses[i].Assignments = append(courses[i].Assignments, a)
		}
	}
	return courses, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	lectures, err := collect(ctx, r.db, scanLecture,
		`SELECT `+lectureColumns+` FROM lectures WHERE course_id = $1 ORDER BY ord, created_at`, id)
	if err != nil {
		return nil, err
	}
	assignments, err := collect(ctx, r.db, scanAssignment,
		`SELECT `+assignmentColumns+` FROM assignments WHERE course_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	if lectures != nil {
		c.Lectures = lectures
	}
	if assignments != nil {
		c.Assignments = assignments
	}
	return &c, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, c models.Course) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}
	query :=
		`INSERT INTO courses (id, user_id, title, description, source, status, notes, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		c.ID, userID, c.Title, c.Description, c.Source, c.Status, c.Notes, tags, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// exec runs a write and maps "no rows affected" to common.ErrorNotFound.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, c models.Course) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}
	return r.exec(ctx,
		`UPDATE courses SET title = $3, description = $4, source = $5, status = $6, notes = $7, tags = $8, updated_at = $9
		 WHERE id = $1 AND user_id = $2`,
		c.ID, userID, c.Title, c.Description, c.Source, c.Status, c.Notes, tags, c.UpdatedAt)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	return r.exec(ctx, `DELETE FROM courses WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) CreateLecture(ctx context.Context, l models.Lecture) error {
	query :=
		`INSERT INTO lectures (id, course_id, ord, title, video_url, status, duration_minutes, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.CourseID, l.Order, l.Title, l.VideoURL, l.Status, l.DurationMinutes, l.Note, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateLecture(ctx context.Context, l models.Lecture) error {
	return r.exec(ctx,
		`UPDATE lectures SET ord = $3, title = $4, video_url = $5, status = $6, duration_minutes = $7, note = $8, updated_at = $9
		 WHERE id = $1 AND course_id = $2`,
		l.ID, l.CourseID, l.Order, l.Title, l.VideoURL, l.Status, l.DurationMinutes, l.Note, l.UpdatedAt)
}

func (r *PostgresRepository) DeleteLecture(ctx context.Context, courseID, id string) error {
	return r.exec(ctx, `DELETE FROM lectures WHERE id = $1 AND course_id = $2`, id, courseID)
}

func (r *PostgresRepository) DeleteLectures(ctx context.Context, courseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lectures WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateAssignment(ctx context.Context, a models.Assignment) error {
	query :=
		`INSERT INTO assignments (id, course_id, title, status, due_date, link, note, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.CourseID, a.Title, a.Status, a.DueDate, a.Link, a.Note, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateAssignment(ctx context.Context, a models.Assignment) error {
	return r.exec(ctx,
		`UPDATE assignments SET title = $3, status = $4, due_date = $5, link = $6, note = $7, updated_at = $8
		 WHERE id = $1 AND course_id = $2`,
		a.ID, a.CourseID, a.Title, a.Status, a.DueDate, a.Link, a.Note, a.UpdatedAt)
}

func (r *PostgresRepository) DeleteAssignment(ctx context.Context, courseID, id string) error {
	return r.exec(ctx, `DELETE FROM assignments WHERE id = $1 AND course_id = $2`, id, courseID)
}

func (r *PostgresRepository) DeleteAssignments(ctx context.Context, courseID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
