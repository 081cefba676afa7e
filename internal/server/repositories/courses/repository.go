// Package courses persists courses together with their lectures and
// assignments. Every course belongs to one user; course-level reads and
// writes are scoped by that user id.
package courses

import (
	"context"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type Repository interface {
	// List returns the user's courses ordered by creation time, each with
	// lectures (by order) and assignments (by creation time).
	List(ctx context.Context, userID string) ([]models.Course, error)
	Get(ctx context.Context, userID, id string) (*models.Course, error)
	// Exists reports whether id is taken by any user's course.
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, userID string, c models.Course) error
	// Update writes the course's own columns; lectures and assignments are
	// left untouched.
	Update(ctx context.Context, userID string, c models.Course) error
	Delete(ctx context.Context, userID, id string) error

	CreateLecture(ctx context.Context, l models.Lecture) error
	UpdateLecture(ctx context.Context, l models.Lecture) error
	DeleteLecture(ctx context.Context, courseID, id string) error
	DeleteLectures(ctx context.Context, courseID string) error

	CreateAssignment(ctx context.Context, a models.Assignment) error
	UpdateAssignment(ctx context.Context, a models.Assignment) error
	DeleteAssignment(ctx context.Context, courseID, id string) error
	DeleteAssignments(ctx context.Context, courseID string) error
}
