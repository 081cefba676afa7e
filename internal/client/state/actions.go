package state

import "github.com/dmitrijs2005/pocketschool/internal/models"

// Action is a closed set of state transitions; only types in this package
// implement it.
type Action interface {
	isAction()
}

// SetData replaces user and courses wholesale.
type SetData struct {
	User    *models.User
	Courses []models.Course
}

type SetUser struct{ User *models.User }

type SetLoading struct {
	Active bool
	Op     string
	Label  string
}

type SetError struct{ Message string }

type ClearError struct{}

// UpsertCourse inserts a course or replaces the one with the same id.
type UpsertCourse struct{ Course models.Course }

type RemoveCourse struct{ ID string }

// UpsertLecture is ignored when the owning course is absent.
type UpsertLecture struct {
	CourseID string
	Lecture  models.Lecture
}

type RemoveLecture struct {
	CourseID  string
	LectureID string
}

// UpsertAssignment is ignored when the owning course is absent.
type UpsertAssignment struct {
	CourseID   string
	Assignment models.Assignment
}

type RemoveAssignment struct {
	CourseID     string
	AssignmentID string
}

type SetOnline struct{ Online bool }

type SetPending struct{ Count int }

// Reset returns to the signed-out empty state, keeping connectivity.
type Reset struct{}

func (SetData) isAction()          {}
func (SetUser) isAction()          {}
func (SetLoading) isAction()       {}
func (SetError) isAction()         {}
func (ClearError) isAction()       {}
func (UpsertCourse) isAction()     {}
func (RemoveCourse) isAction()     {}
func (UpsertLecture) isAction()    {}
func (RemoveLecture) isAction()    {}
func (UpsertAssignment) isAction() {}
func (RemoveAssignment) isAction() {}
func (SetOnline) isAction()        {}
func (SetPending) isAction()       {}
func (Reset) isAction()            {}
