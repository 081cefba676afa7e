package store

import (
	"context"

	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/pending"
	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/records"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// Records returns the record repository with fallback applied.
func (s *Store) Records() records.Repository { return recordsView{s} }

// Pending returns the pending-change queue with fallback applied.
func (s *Store) Pending() pending.Repository { return pendingView{s} }

// Metadata returns the key/value repository with fallback applied.
func (s *Store) Metadata() metadata.Repository { return metadataView{s} }

type recordsView struct{ s *Store }

func (v recordsView) Put(ctx context.Context, kind records.Kind, rec records.Record) error {
	return exec(ctx, v.s, func(r repositories) error { return r.records.Put(ctx, kind, rec) })
}

func (v recordsView) Get(ctx context.Context, kind records.Kind, id string) (*records.Record, error) {
	return call(ctx, v.s, func(r repositories) (*records.Record, error) { return r.records.Get(ctx, kind, id) })
}

func (v recordsView) GetAll(ctx context.Context, kind records.Kind) ([]records.Record, error) {
	return call(ctx, v.s, func(r repositories) ([]records.Record, error) { return r.records.GetAll(ctx, kind) })
}

func (v recordsView) Delete(ctx context.Context, kind records.Kind, id string) error {
	return exec(ctx, v.s, func(r repositories) error { return r.records.Delete(ctx, kind, id) })
}

func (v recordsView) Clear(ctx context.Context, kind records.Kind) error {
	return exec(ctx, v.s, func(r repositories) error { return r.records.Clear(ctx, kind) })
}

type pendingView struct{ s *Store }

func (v pendingView) Enqueue(ctx context.Context, c *models.PendingChange) error {
	return exec(ctx, v.s, func(r repositories) error { return r.pending.Enqueue(ctx, c) })
}

func (v pendingView) ListAll(ctx context.Context) ([]models.PendingChange, error) {
	return call(ctx, v.s, func(r repositories) ([]models.PendingChange, error) { return r.pending.ListAll(ctx) })
}

func (v pendingView) Remove(ctx context.Context, id int64) error {
	return exec(ctx, v.s, func(r repositories) error { return r.pending.Remove(ctx, id) })
}

func (v pendingView) Clear(ctx context.Context) error {
	return exec(ctx, v.s, func(r repositories) error { return r.pending.Clear(ctx) })
}

func (v pendingView) Count(ctx context.Context) (int, error) {
	return call(ctx, v.s, func(r repositories) (int, error) { return r.pending.Count(ctx) })
}

func (v pendingView) Rewrite(ctx context.Context, from, to string) error {
	return exec(ctx, v.s, func(r repositories) error { return r.pending.Rewrite(ctx, from, to) })
}

type metadataView struct{ s *Store }

func (v metadataView) Get(ctx context.Context, key string) ([]byte, error) {
	return call(ctx, v.s, func(r repositories) ([]byte, error) { return r.metadata.Get(ctx, key) })
}

func (v metadataView) Set(ctx context.Context, key string, value []byte) error {
	return exec(ctx, v.s, func(r repositories) error { return r.metadata.Set(ctx, key, value) })
}

func (v metadataView) Delete(ctx context.Context, key string) error {
	return exec(ctx, v.s, func(r repositories) error { return r.metadata.Delete(ctx, key) })
}

func (v metadataView) List(ctx context.Context) (map[string][]byte, error) {
	return call(ctx, v.s, func(r repositories) (map[string][]byte, error) { return r.metadata.List(ctx) })
}

func (v metadataView) Clear(ctx context.Context) error {
	return exec(ctx, v.s, func(r repositories) error { return r.metadata.Clear(ctx) })
}
