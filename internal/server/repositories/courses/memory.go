package courses

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type ownedCourse struct {
	userID string
	course models.Course
}

// MemoryRepository keeps courses in process memory. Used when no database
// is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	courses map[string]*ownedCourse
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{courses: map[string]*ownedCourse{}}
}

func sortChildren(c *models.Course) {
	sort.SliceStable(c.Lectures, func(i, j int) bool {
		a, b := c.Lectures[i], c.Lectures[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	sort.SliceStable(c.Assignments, func(i, j int) bool {
		return c.Assignments[i].CreatedAt.Before(c.Assignments[j].CreatedAt)
	})
}

func (r *MemoryRepository) List(ctx context.Context, userID string) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Course{}
	for _, oc := range r.courses {
		if oc.userID == userID {
			c := oc.course.Clone()
			sortChildren(&c)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, id string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	oc, ok := r.courses[id]
	if !ok || oc.userID != userID {
		return nil, common.ErrorNotFound
	}
	c := oc.course.Clone()
	sortChildren(&c)
	return &c, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.courses[id]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, c models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; ok {
		return common.ErrorAlreadyExists
	}
	c = c.Clone()
	c.Lectures = []models.Lecture{}
	c.Assignments = []models.Assignment{}
	r.courses[c.ID] = &ownedCourse{userID: userID, course: c}
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, userID string, c models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oc, ok := r.courses[c.ID]
	if !ok || oc.userID != userID {
		return common.ErrorNotFound
	}
	next := c.Clone()
	next.Lectures = oc.course.Lectures
	next.Assignments = oc.course.Assignments
	next.CreatedAt = oc.course.CreatedAt
	oc.course = next
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oc, ok := r.courses[id]
	if !ok || oc.userID != userID {
		return common.ErrorNotFound
	}
	delete(r.courses, id)
	return nil
}

// withCourse runs fn on the stored course under the write lock.
func (r *MemoryRepository) withCourse(courseID string, fn func(c *models.Course) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oc, ok := r.courses[courseID]
	if !ok {
		return common.ErrorNotFound
	}
	return fn(&oc.course)
}

func (r *MemoryRepository) CreateLecture(ctx context.Context, l models.Lecture) error {
	return r.withCourse(l.CourseID, func(c *models.Course) error {
		if c.LectureIndex(l.ID) >= 0 {
			return common.ErrorAlreadyExists
		}
		c.Lectures = append(c.Lectures, l.Clone())
		return nil
	})
}

func (r *MemoryRepository) UpdateLecture(ctx context.Context, l models.Lecture) error {
	return r.withCourse(l.CourseID, func(c *models.Course) error {
		i := c.LectureIndex(l.ID)
		if i < 0 {
			return common.ErrorNotFound
		}
		l.CreatedAt = c.Lectures[i].CreatedAt
		c.Lectures[i] = l.Clone()
		return nil
	})
}

func (r *MemoryRepository) DeleteLecture(ctx context.Context, courseID, id string) error {
	return r.withCourse(courseID, func(c *models.Course) error {
		i := c.LectureIndex(id)
		if i < 0 {
			return common.ErrorNotFound
		}
		c.Lectures = append(c.Lectures[:i], c.Lectures[i+1:]...)
		return nil
	})
}

func (r *MemoryRepository) DeleteLectures(ctx context.Context, courseID string) error {
	err := r.withCourse(courseID, func(c *models.Course) error {
		c.Lectures = []models.Lecture{}
		return nil
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (r *MemoryRepository) CreateAssignment(ctx context.Context, a models.Assignment) error {
	return r.withCourse(a.CourseID, func(c *models.Course) error {
		if c.AssignmentIndex(a.ID) >= 0 {
			return common.ErrorAlreadyExists
		}
		c.Assignments = append(c.Assignments, a.Clone())
		return nil
	})
}

func (r *MemoryRepository) UpdateAssignment(ctx context.Context, a models.Assignment) error {
	return r.withCourse(a.CourseID, func(c *models.Course) error {
		i := c.AssignmentIndex(a.ID)
		if i < 0 {
			return common.ErrorNotFound
		}
		a.CreatedAt = c.Assignments[i].CreatedAt
		c.Assignments[i] = a.Clone()
		return nil
	})
}

func (r *MemoryRepository) DeleteAssignment(ctx context.Context, courseID, id string) error {
	return r.withCourse(courseID, func(c *models.Course) error {
		i := c.AssignmentIndex(id)
		if i < 0 {
			return common.ErrorNotFound
		}
		c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
		return nil
	})
}

func (r *MemoryRepository) DeleteAssignments(ctx context.Context, courseID string) error {
	err := r.withCourse(courseID, func(c *models.Course) error {
		c.Assignments = []models.Assignment{}
		return nil
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}
