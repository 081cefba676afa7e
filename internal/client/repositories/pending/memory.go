package pending

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []models.PendingChange
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Enqueue(_ context.Context, c *models.PendingChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	c.EnqueuedAt = r.now().UTC()
	r.entries = append(r.entries, *c)
	return nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]models.PendingChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PendingChange{}, r.entries...), nil
}

func (r *MemoryRepository) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

func (r *MemoryRepository) Rewrite(_ context.Context, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].CourseID == from {
			r.entries[i].CourseID = to
		}
		if r.entries[i].TargetID == from {
			r.entries[i].TargetID = to
		}
	}
	return nil
}
