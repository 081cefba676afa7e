// Package session holds the signed-in user's token and profile. A Session is
// created once and handed by reference to everything that needs the token,
// so login and logout are visible to the HTTP client immediately.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pocketschool/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

const (
	keyToken = "session.token"
	keyUser  = "session.user"
)

type Session struct {
	mu    sync.RWMutex
	repo  metadata.Repository
	token string
	user  *models.User
}

func New(repo metadata.Repository) *Session {
	return &Session{repo: repo}
}

// Load restores a previously saved session. A missing session is not an error.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		return fmt.Errorf("failed to load session token: %w", err)
	}
	rawUser, err := s.repo.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("failed to load session user: %w", err)
	}

	var user *models.User
	if rawUser != nil {
		user = &models.User{}
		if err := json.Unmarshal(rawUser, user); err != nil {
			return fmt.Errorf("failed to decode session user: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = string(token)
	s.user = user
	return nil
}

func (s *Session) Save(ctx context.Context, token string, user models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	if err := s.repo.Set(ctx, keyToken, []byte(token)); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, keyUser, rawUser); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	return nil
}

// SetUser refreshes the cached profile while keeping the token.
func (s *Session) SetUser(ctx context.Context, user models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	if err := s.repo.Set(ctx, keyUser, rawUser); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

// Clear forgets the session in memory first, so a failing repository cannot
// leave the client signed in.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, keyToken); err != nil {
		return err
	}
	return s.repo.Delete(ctx, keyUser)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
