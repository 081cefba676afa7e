// Package users persists user accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// Account is a user together with the stored password hash.
type Account struct {
	models.User
	PasswordHash string
}

type Repository interface {
	// Create stores a new account. common.ErrorAlreadyExists is returned when
	// the email is taken.
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdateDisplayName(ctx context.Context, id, name string, now time.Time) (*models.User, error)
	// SetFocusCourse sets or, with a nil courseID, clears the focus course.
	SetFocusCourse(ctx context.Context, id string, courseID *string, now time.Time) (*models.User, error)
	// ClearFocusCourse unsets courseID wherever it is the focus course.
	ClearFocusCourse(ctx context.Context, courseID string) error
}
