package records

import (
	"context"
	"time"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindCourses Kind = "courses"
)

// Record is an opaque, JSON-encoded value keyed by ID.
type Record struct {
	ID        string
	Data      []byte
	UpdatedAt time.Time
}

type Repository interface {
	Put(ctx context.Context, kind Kind, rec Record) error
	Get(ctx context.Context, kind Kind, id string) (*Record, error)
	GetAll(ctx context.Context, kind Kind) ([]Record, error)
	Delete(ctx context.Context, kind Kind, id string) error
	Clear(ctx context.Context, kind Kind) error
}
