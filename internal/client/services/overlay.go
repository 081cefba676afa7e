package services

import (
	"fmt"

	"github.com/dmitrijs2005/pocketschool/internal/client/state"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// overlayPending applies queued changes, oldest first, to courses fetched
// from the server, so edits the server has not accepted yet stay visible.
// Changes that cannot be decoded are skipped and reported in skipped.
func overlayPending(courses []models.Course, queue []models.PendingChange) (out []models.Course, skipped []error) {
	st := state.State{Courses: courses}
	for _, ch := range queue {
		a, err := pendingAction(st, ch)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if a != nil {
			st = state.Reduce(st, a)
		}
	}
	return st.Courses, skipped
}

// pendingAction returns the action that reproduces ch on st, or nil when the
// change no longer applies.
func pendingAction(st state.State, ch models.PendingChange) (state.Action, error) {
	switch ch.Entity {
	case models.EntityCourse:
		return courseAction(st, ch)
	case models.EntityLecture:
		return lectureAction(st, ch)
	case models.EntityAssignment:
		return assignmentAction(st, ch)
	}
	return nil, fmt.Errorf("unknown entity %q", ch.Entity)
}

func courseAction(st state.State, ch models.PendingChange) (state.Action, error) {
	switch ch.Op {
	case models.OpCreate:
		if _, ok := st.Course(ch.TargetID); ok {
			return nil, nil
		}
		nc, err := decodePayload[models.NewCourse](&ch)
		if err != nil {
			return nil, err
		}
		return state.UpsertCourse{Course: nc.Build(ch.TargetID, ch.EnqueuedAt)}, nil
	case models.OpUpdate:
		c, ok := st.Course(ch.TargetID)
		if !ok {
			return nil, nil
		}
		patch, err := decodePayload[models.CoursePatch](&ch)
		if err != nil {
			return nil, err
		}
		patch.Apply(&c, ch.EnqueuedAt)
		return state.UpsertCourse{Course: c}, nil
	case models.OpDelete:
		return state.RemoveCourse{ID: ch.TargetID}, nil
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}

func lectureAction(st state.State, ch models.PendingChange) (state.Action, error) {
	switch ch.Op {
	case models.OpCreate:
		c, ok := st.Course(ch.CourseID)
		if !ok || c.LectureIndex(ch.TargetID) >= 0 {
			return nil, nil
		}
		nl, err := decodePayload[models.NewLecture](&ch)
		if err != nil {
			return nil, err
		}
		return state.UpsertLecture{CourseID: ch.CourseID, Lecture: nl.Build(c, ch.TargetID, ch.EnqueuedAt)}, nil
	case models.OpUpdate:
		l, ok := st.Lecture(ch.CourseID, ch.TargetID)
		if !ok {
			return nil, nil
		}
		patch, err := decodePayload[models.LecturePatch](&ch)
		if err != nil {
			return nil, err
		}
		patch.Apply(&l, ch.EnqueuedAt)
		return state.UpsertLecture{CourseID: ch.CourseID, Lecture: l}, nil
	case models.OpDelete:
		return state.RemoveLecture{CourseID: ch.CourseID, LectureID: ch.TargetID}, nil
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}

func assignmentAction(st state.State, ch models.PendingChange) (state.Action, error) {
	switch ch.Op {
	case models.OpCreate:
		c, ok := st.Course(ch.CourseID)
		if !ok || c.AssignmentIndex(ch.TargetID) >= 0 {
			return nil, nil
		}
		na, err := decodePayload[models.NewAssignment](&ch)
		if err != nil {
			return nil, err
		}
		return state.UpsertAssignment{CourseID: ch.CourseID, Assignment: na.Build(ch.CourseID, ch.TargetID, ch.EnqueuedAt)}, nil
	case models.OpUpdate:
		a, ok := st.Assignment(ch.CourseID, ch.TargetID)
		if !ok {
			return nil, nil
		}
		patch, err := decodePayload[models.AssignmentPatch](&ch)
		if err != nil {
			return nil, err
		}
		patch.Apply(&a, ch.EnqueuedAt)
		return state.UpsertAssignment{CourseID: ch.CourseID, Assignment: a}, nil
	case models.OpDelete:
		return state.RemoveAssignment{CourseID: ch.CourseID, AssignmentID: ch.TargetID}, nil
	}
	return nil, fmt.Errorf("unknown op %q", ch.Op)
}
