package state

import "github.com/dmitrijs2005/pocketschool/internal/models"

// Reduce returns the state that results from applying a to s. s is never
// modified.
func Reduce(s State, a Action) State {
	next := s.Clone()

	switch a := a.(type) {
	case SetData:
		next.User = cloneUser(a.User)
		next.Courses = cloneCourses(a.Courses)
	case SetUser:
		next.User = cloneUser(a.User)
	case SetLoading:
		next.Loading = Loading{Active: a.Active, Op: a.Op, Label: a.Label}
		if !a.Active {
			next.Loading = Loading{}
		}
	case SetError:
		next.Err = a.Message
	case ClearError:
		next.Err = ""
	case UpsertCourse:
		c := a.Course.Clone()
		if i := next.courseIndex(c.ID); i >= 0 {
			next.Courses[i] = c
		} else {
			next.Courses = append(next.Courses, c)
		}
	case RemoveCourse:
		if i := next.courseIndex(a.ID); i >= 0 {
			next.Courses = append(next.Courses[:i], next.Courses[i+1:]...)
		}
	case UpsertLecture:
		withCourse(&next, a.CourseID, func(c *models.Course) {
			if i := c.LectureIndex(a.Lecture.ID); i >= 0 {
				c.Lectures[i] = a.Lecture.Clone()
			} else {
				c.Lectures = append(c.Lectures, a.Lecture.Clone())
			}
		})
	case RemoveLecture:
		withCourse(&next, a.CourseID, func(c *models.Course) {
			if i := c.LectureIndex(a.LectureID); i >= 0 {
				c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
			}
		})
	case UpsertAssignment:
		withCourse(&next, a.CourseID, func(c *models.Course) {
			if i := c.AssignmentIndex(a.Assignment.ID); i >= 0 {
				c.Assignments[i] = a.Assignment.Clone()
			} else {
				c.Assignments = append(c.Assignments, a.Assignment.Clone())
			}
		})
	case RemoveAssignment:
		withCourse(&next, a.CourseID, func(c *models.Course) {
			if i := c.AssignmentIndex(a.AssignmentID); i >= 0 {
				c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			}
		})
	case SetOnline:
		next.Online = a.Online
	case SetPending:
		next.Pending = a.Count
	case Reset:
		next = State{Online: s.Online}
	}

	return next
}

// withCourse mutates the course in place (next is already a deep copy) and
// recomputes its derived status.
func withCourse(next *State, courseID string, fn func(c *models.Course)) {
	i := next.courseIndex(courseID)
	if i < 0 {
		return
	}
	c := &next.Courses[i]
	fn(c)
	c.Recompute()
}
