package records

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/pocketschool/internal/common"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	data map[Kind]map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[Kind]map[string]Record)}
}

func (r *MemoryRepository) Put(_ context.Context, kind Kind, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.data[kind]
	if !ok {
		bucket = make(map[string]Record)
		r.data[kind] = bucket
	}
	rec.Data = append([]byte(nil), rec.Data...)
	bucket[rec.ID] = rec
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, kind Kind, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.data[kind][id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

func (r *MemoryRepository) GetAll(_ context.Context, kind Kind) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Record, 0, len(r.data[kind]))
	for _, rec := range r.data[kind] {
		rec.Data = append([]byte(nil), rec.Data...)
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryRepository) Delete(_ context.Context, kind Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[kind], id)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, kind)
	return nil
}
