// Package state holds the in-memory projection read by the CLI and the pure
// reducer that evolves it. Nothing here performs I/O.
package state

import "github.com/dmitrijs2005/pocketschool/internal/models"

// Loading is the coarse busy indicator. Op names the operation in flight,
// Label is a human description of it.
type Loading struct {
	Active bool
	Op     string
	Label  string
}

type State struct {
	User    *models.User
	Courses []models.Course
	Loading Loading
	Err     string
	Online  bool
	Pending int
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.User = cloneUser(s.User)
	out.Courses = cloneCourses(s.Courses)
	return out
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	out := *u
	if u.FocusCourseID != nil {
		id := *u.FocusCourseID
		out.FocusCourseID = &id
	}
	return &out
}

func cloneCourses(in []models.Course) []models.Course {
	out := make([]models.Course, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func (s State) courseIndex(id string) int {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return i
		}
	}
	return -1
}

// Course returns a copy of the course with the given id.
func (s State) Course(id string) (models.Course, bool) {
	i := s.courseIndex(id)
	if i < 0 {
		return models.Course{}, false
	}
	return s.Courses[i].Clone(), true
}

func (s State) Lecture(courseID, lectureID string) (models.Lecture, bool) {
	c, ok := s.Course(courseID)
	if !ok {
		return models.Lecture{}, false
	}
	i := c.LectureIndex(lectureID)
	if i < 0 {
		return models.Lecture{}, false
	}
	return c.Lectures[i], true
}

func (s State) Assignment(courseID, assignmentID string) (models.Assignment, bool) {
	c, ok := s.Course(courseID)
	if !ok {
		return models.Assignment{}, false
	}
	i := c.AssignmentIndex(assignmentID)
	if i < 0 {
		return models.Assignment{}, false
	}
	return c.Assignments[i], true
}
