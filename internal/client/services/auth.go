// Package services holds the client's application logic: authentication,
// the sync engine that sends or queues mutations, and the state projection
// the CLI reads.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/session"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// AuthService signs users in and out. Signing in as a different user than the
// one whose data is cached locally wipes the cache first.
type AuthService struct {
	api     client.Client
	session *session.Session
	store   *store.Store
	logger  logging.Logger
}

func NewAuthService(api client.Client, sess *session.Session, st *store.Store, logger logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AuthService{api: api, session: sess, store: st, logger: logger}
}

func (a *AuthService) Register(ctx context.Context, r models.Registration) (*models.User, error) {
	r.Email = strings.TrimSpace(r.Email)
	if err := models.Validate(r); err != nil {
		return nil, err
	}
	res, err := a.api.Register(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return a.establish(ctx, res)
}

func (a *AuthService) Login(ctx context.Context, c models.Credentials) (*models.User, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := models.Validate(c); err != nil {
		return nil, err
	}
	res, err := a.api.Login(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.establish(ctx, res)
}

func (a *AuthService) establish(ctx context.Context, res *models.AuthResult) (*models.User, error) {
	cached, err := a.store.User(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to read cached user", "error", err)
	}
	if cached != nil && cached.ID != res.User.ID {
		a.logger.Info(ctx, "different user signed in, clearing local data")
		if err := a.store.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear local data: %w", err)
		}
	}

	if err := a.session.Save(ctx, res.Token, res.User); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	if err := a.store.SaveUser(ctx, res.User); err != nil {
		a.logger.Warn(ctx, "failed to cache user", "error", err)
	}
	u := res.User
	return &u, nil
}

// Logout forgets the session and every locally cached record, including
// changes that were never sent.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := a.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	return nil
}

// RefreshUser fetches the profile and updates the session and the cache.
func (a *AuthService) RefreshUser(ctx context.Context) (*models.User, error) {
	if !a.session.Authenticated() {
		return nil, ErrNotSignedIn
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.remember(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *AuthService) remember(ctx context.Context, u models.User) error {
	if err := a.session.SetUser(ctx, u); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if err := a.store.SaveUser(ctx, u); err != nil {
		a.logger.Warn(ctx, "failed to cache user", "error", err)
	}
	return nil
}

func (a *AuthService) Authenticated() bool {
	return a.session.Authenticated()
}

// CurrentUser returns the session user or nil.
func (a *AuthService) CurrentUser() *models.User {
	return a.session.User()
}
