package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/dmitrijs2005/pocketschool/internal/server/auth"
	"github.com/dmitrijs2005/pocketschool/internal/server/config"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pocketschool/internal/server/repositories/users"
	"github.com/google/uuid"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		tokenTTL:    cfg.TokenTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) issue(u models.User) (*models.AuthResult, error) {
	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: u, Token: token}, nil
}

// Register creates an account and signs it in. An empty display name
// defaults to the local part of the email.
func (s *UserService) Register(ctx context.Context, r models.Registration) (*models.AuthResult, error) {
	if err := models.Validate(r); err != nil {
		return nil, err
	}

	email := normalizeEmail(r.Email)
	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acc := &users.Account{
		User: models.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: name,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: hash,
	}

	if err := s.repomanager.Users(s.db).Create(ctx, acc); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(acc.User)
}

func (s *UserService) Login(ctx context.Context, c models.Credentials) (*models.AuthResult, error) {
	if err := models.Validate(c); err != nil {
		return nil, err
	}

	acc, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(c.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	ok, err := auth.CheckPassword(acc.PasswordHash, c.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(acc.User)
}

// Authenticate resolves a bearer token to a user id.
func (s *UserService) Authenticate(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	acc, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &acc.User, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p models.ProfilePatch) (*models.User, error) {
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(s.db).UpdateDisplayName(ctx, userID, strings.TrimSpace(p.DisplayName), s.now())
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

// SetFocusCourse pins one of the user's courses, or clears the pin when
// f.CourseID is nil.
func (s *UserService) SetFocusCourse(ctx context.Context, userID string, f models.FocusCourse) (*models.User, error) {
	if f.CourseID != nil {
		if _, err := s.repomanager.Courses(s.db).Get(ctx, userID, *f.CourseID); err != nil {
			return nil, notFound("course", err)
		}
	}
	u, err := s.repomanager.Users(s.db).SetFocusCourse(ctx, userID, f.CourseID, s.now())
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}
