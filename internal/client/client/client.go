package client

import (
	"context"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// Client is the REST API surface the sync core uses. Lectures and
// assignments are listed and fetched through their owning course.
type Client interface {
	Register(ctx context.Context, r models.Registration) (*models.AuthResult, error)
	Login(ctx context.Context, c models.Credentials) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfilePatch) (*models.User, error)
	SetFocusCourse(ctx context.Context, f models.FocusCourse) (*models.User, error)
	Export(ctx context.Context) (*models.Export, Meta, error)

	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, c models.NewCourse) (*models.Course, error)
	UpdateCourse(ctx context.Context, id string, p models.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateLecture(ctx context.Context, courseID string, l models.NewLecture) (*models.Lecture, error)
	UpdateLecture(ctx context.Context, courseID, lectureID string, p models.LecturePatch) (*models.Lecture, error)
	DeleteLecture(ctx context.Context, courseID, lectureID string) error

	CreateAssignment(ctx context.Context, courseID string, a models.NewAssignment) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, courseID, assignmentID string, p models.AssignmentPatch) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, courseID, assignmentID string) error

	Ping(ctx context.Context) error
}
