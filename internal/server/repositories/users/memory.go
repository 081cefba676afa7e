package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// MemoryRepository keeps accounts in process memory. Used when no database
// is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: map[string]Account{}}
}

func cloneAccount(a Account) *Account {
	if a.FocusCourseID != nil {
		v := *a.FocusCourseID
		a.FocusCourseID = &v
	}
	return &a
}

func (r *MemoryRepository) Create(ctx context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return common.ErrorAlreadyExists
		}
	}
	if _, ok := r.accounts[a.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.accounts[a.ID] = *cloneAccount(*a)
	return nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneAccount(a), nil
}

func (r *MemoryRepository) update(id string, fn func(a *Account)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(&a)
	r.accounts[id] = a
	return &cloneAccount(a).User, nil
}

func (r *MemoryRepository) UpdateDisplayName(ctx context.Context, id, name string, now time.Time) (*models.User, error) {
	return r.update(id, func(a *Account) {
		a.DisplayName = name
		a.UpdatedAt = now
	})
}

func (r *MemoryRepository) SetFocusCourse(ctx context.Context, id string, courseID *string, now time.Time) (*models.User, error) {
	return r.update(id, func(a *Account) {
		a.FocusCourseID = nil
		if courseID != nil {
			v := *courseID
			a.FocusCourseID = &v
		}
		a.UpdatedAt = now
	})
}

func (r *MemoryRepository) ClearFocusCourse(ctx context.Context, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.accounts {
		if a.FocusCourseID != nil && *a.FocusCourseID == courseID {
			a.FocusCourseID = nil
			r.accounts[id] = a
		}
	}
	return nil
}
