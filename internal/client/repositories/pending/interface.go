// Package pending stores the client's queue of mutations that still have to
// reach the server. Entries are kept in enqueue order and only removed once
// the server has accepted them.
package pending

import (
	"context"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

type Repository interface {
	// Enqueue appends c, assigning its ID and EnqueuedAt.
	Enqueue(ctx context.Context, c *models.PendingChange) error
	// ListAll returns every entry in enqueue order.
	ListAll(ctx context.Context) ([]models.PendingChange, error)
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	// Rewrite replaces every reference to entity id from with to, so queued
	// entries keep pointing at an entity whose id was reassigned.
	Rewrite(ctx context.Context, from, to string) error
}
