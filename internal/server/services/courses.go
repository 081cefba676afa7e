package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/dbx"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CourseService owns the course aggregate. Lecture writes recompute the
// derived course status in the same transaction.
type CourseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewCourseService(db *sql.DB, m repomanager.RepositoryManager) *CourseService {
	return &CourseService{
		db:          db,
		repomanager: m,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

func (s *CourseService) id(requested string) string {
	if requested != "" {
		return requested
	}
	return s.newID()
}

func (s *CourseService) List(ctx context.Context, userID string) ([]models.Course, error) {
	list, err := s.repomanager.Courses(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return list, nil
}

func (s *CourseService) Get(ctx context.Context, userID, id string) (*models.Course, error) {
	c, err := s.repomanager.Courses(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, notFound("course", err)
	}
	return c, nil
}

// Create stores a new course. Replaying a create with an id the user already
// owns returns the stored course unchanged.
func (s *CourseService) Create(ctx context.Context, userID string, n models.NewCourse) (*models.Course, error) {
	if err := models.Validate(n); err != nil {
		return nil, err
	}

	repo := s.repomanager.Courses(s.db)
	c := n.Build(s.id(n.ID), s.now())

	err := repo.Create(ctx, userID, c)
	if errors.Is(err, common.ErrorAlreadyExists) {
		existing, gerr := repo.Get(ctx, userID, c.ID)
		if gerr != nil {
			return nil, ErrIDConflict
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error creating course: %w", err)
	}
	return &c, nil
}

func (s *CourseService) Update(ctx context.Context, userID, id string, p models.CoursePatch) (*models.Course, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	var out *models.Course
	err := withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		c, err := repo.Get(ctx, userID, id)
		if err != nil {
			return notFound("course", err)
		}
		p.Apply(c, s.now())
		if err := repo.Update(ctx, userID, *c); err != nil {
			return notFound("course", err)
		}
		out = c
		return nil
	})
	return out, err
}

// Delete removes the course with its lectures and assignments and clears it
// as the owner's focus course.
func (s *CourseService) Delete(ctx context.Context, userID, id string) error {
	return withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return notFound("course", err)
		}
		if err := repo.DeleteAssignments(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteLectures(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, userID, id); err != nil {
			return notFound("course", err)
		}
		return s.repomanager.Users(tx).ClearFocusCourse(ctx, id)
	})
}

// mutate loads the course inside a transaction, lets fn change it and writes
// the course row back when its derived status moved.
func (s *CourseService) mutate(ctx context.Context, userID, courseID string, fn func(ctx context.Context, tx dbx.DBTX, c *models.Course) error) (*models.Course, error) {
	var out *models.Course
	err := withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)
		c, err := repo.Get(ctx, userID, courseID)
		if err != nil {
			return notFound("course", err)
		}
		if err := fn(ctx, tx, c); err != nil {
			return err
		}
		if c.Recompute() {
			c.UpdatedAt = s.now()
			if err := repo.Update(ctx, userID, *c); err != nil {
				return err
			}
		}
		out = c
		return nil
	})
	return out, err
}

// CreateLecture returns the created lecture and the course after status
// recomputation.
func (s *CourseService) CreateLecture(ctx context.Context, userID, courseID string, n models.NewLecture) (*models.Lecture, *models.Course, error) {
	if err := models.Validate(n); err != nil {
		return nil, nil, err
	}

	var l models.Lecture
	c, err := s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		if n.ID != "" {
			if i := c.LectureIndex(n.ID); i >= 0 {
				l = c.Lectures[i]
				return nil
			}
		}
		if n.Order != 0 {
			if err := models.CheckLectureOrder(*c, "", n.Order); err != nil {
				return err
			}
		}
		l = n.Build(*c, s.id(n.ID), s.now())
		if err := s.repomanager.Courses(tx).CreateLecture(ctx, l); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return ErrIDConflict
			}
			return fmt.Errorf("error creating lecture: %w", err)
		}
		c.Lectures = append(c.Lectures, l)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &l, c, nil
}

func (s *CourseService) UpdateLecture(ctx context.Context, userID, courseID, id string, p models.LecturePatch) (*models.Lecture, *models.Course, error) {
	if err := models.Validate(p); err != nil {
		return nil, nil, err
	}

	var l models.Lecture
	c, err := s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		i := c.LectureIndex(id)
		if i < 0 {
			return &NotFoundError{Entity: "lecture"}
		}
		if p.Order != nil {
			if err := models.CheckLectureOrder(*c, id, *p.Order); err != nil {
				return err
			}
		}
		p.Apply(&c.Lectures[i], s.now())
		l = c.Lectures[i]
		return s.repomanager.Courses(tx).UpdateLecture(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}
	return &l, c, nil
}

func (s *CourseService) DeleteLecture(ctx context.Context, userID, courseID, id string) (*models.Course, error) {
	return s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		i := c.LectureIndex(id)
		if i < 0 {
			return &NotFoundError{Entity: "lecture"}
		}
		if err := s.repomanager.Courses(tx).DeleteLecture(ctx, courseID, id); err != nil {
			return notFound("lecture", err)
		}
		c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
		return nil
	})
}

func (s *CourseService) CreateAssignment(ctx context.Context, userID, courseID string, n models.NewAssignment) (*models.Assignment, error) {
	if err := models.Validate(n); err != nil {
		return nil, err
	}

	var a models.Assignment
	_, err := s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		if n.ID != "" {
			if i := c.AssignmentIndex(n.ID); i >= 0 {
				a = c.Assignments[i]
				return nil
			}
		}
		a = n.Build(courseID, s.id(n.ID), s.now())
		if err := s.repomanager.Courses(tx).CreateAssignment(ctx, a); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return ErrIDConflict
			}
			return fmt.Errorf("error creating assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *CourseService) UpdateAssignment(ctx context.Context, userID, courseID, id string, p models.AssignmentPatch) (*models.Assignment, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	var a models.Assignment
	_, err := s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		i := c.AssignmentIndex(id)
		if i < 0 {
			return &NotFoundError{Entity: "assignment"}
		}
		p.Apply(&c.Assignments[i], s.now())
		a = c.Assignments[i]
		return s.repomanager.Courses(tx).UpdateAssignment(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *CourseService) DeleteAssignment(ctx context.Context, userID, courseID, id string) error {
	_, err := s.mutate(ctx, userID, courseID, func(ctx context.Context, tx dbx.DBTX, c *models.Course) error {
		if c.AssignmentIndex(id) < 0 {
			return &NotFoundError{Entity: "assignment"}
		}
		return notFound("assignment", s.repomanager.Courses(tx).DeleteAssignment(ctx, courseID, id))
	})
	return err
}
