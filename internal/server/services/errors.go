// Package services holds the server's business logic: accounts and tokens,
// course aggregates with derived status, and data export.
package services

import (
	"errors"

	"github.com/dmitrijs2005/pocketschool/internal/common"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrIDConflict is returned when a client-chosen id belongs to another
	// user's record.
	ErrIDConflict = errors.New("id already in use")
)

// NotFoundError names the missing entity ("course", "lecture", ...). It
// matches common.ErrorNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == common.ErrorNotFound }

func notFound(entity string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return &NotFoundError{Entity: entity}
	}
	return err
}
