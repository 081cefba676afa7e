package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pocketschool/internal/client/connectivity"
	"github.com/dmitrijs2005/pocketschool/internal/client/session"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api     *fakeAPI
	store   *store.Store
	session *session.Session
	monitor *connectivity.Monitor
	sync    *SyncService
	auth    *AuthService
	proj    *Projection
}

// newHarness wires the client core against fakeAPI with a signed-in session.
func newHarness(t *testing.T, online bool) *harness {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNop()

	h := &harness{api: newFakeAPI()}
	h.store = store.NewMemory(logger)
	t.Cleanup(func() { _ = h.store.Close() })

	h.session = session.New(h.store.Metadata())
	require.NoError(t, h.session.Save(ctx, "tok", h.api.user))

	h.monitor = connectivity.New(online, logger)
	h.sync = NewSyncService(h.api, h.store, h.monitor, logger)
	h.auth = NewAuthService(h.api, h.session, h.store, logger)
	h.proj = NewProjection(Deps{
		API: h.api, Store: h.store, Sync: h.sync, Auth: h.auth, Monitor: h.monitor, Logger: logger,
	})
	t.Cleanup(h.proj.Start(ctx))
	return h
}

func (h *harness) pending(t *testing.T) []models.PendingChange {
	t.Helper()
	q, err := h.sync.PendingChanges(context.Background())
	require.NoError(t, err)
	return q
}

func (h *harness) storedCourse(t *testing.T, id string) models.Course {
	t.Helper()
	c, err := h.store.Course(context.Background(), id)
	require.NoError(t, err)
	return c
}
