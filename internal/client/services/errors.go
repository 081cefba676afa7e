package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/store"
	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

// ErrQueued reports that a mutation was stored in the pending-change queue
// instead of being sent. It is not a failure.
var ErrQueued = errors.New("change queued until the server is reachable")

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// Kind groups errors by how the CLI reacts to them.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindAuth
	KindTransport
	KindServer
	KindStorage
	KindNotFound
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindStorage:
		return "storage"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// KindOf classifies err. Order matters: a *ServerError for 401 is an auth
// error and a 503 is a transport error.
func KindOf(err error) Kind {
	var se *client.ServerError
	switch {
	case err == nil, errors.Is(err, ErrQueued):
		return KindNone
	case errors.Is(err, models.ErrValidation):
		return KindValidation
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, ErrNotSignedIn):
		return KindAuth
	case errors.Is(err, client.ErrUnavailable):
		return KindTransport
	case errors.As(err, &se):
		return KindServer
	case errors.Is(err, store.ErrStorage):
		return KindStorage
	case errors.Is(err, common.ErrorNotFound):
		return KindNotFound
	}
	return KindUnknown
}

// Message turns err into the single line shown to the user.
func Message(err error) string {
	var se *client.ServerError
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindValidation:
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return err.Error()
	case KindAuth:
		if errors.As(err, &se) && se.Status != 0 && se.Code != "" {
			return se.Error()
		}
		if errors.Is(err, ErrNotSignedIn) {
			return "Please log in first."
		}
		return "Your session has expired. Please log in again."
	case KindTransport:
		return "The server is unreachable. Check your connection and try again."
	case KindServer:
		if errors.As(err, &se) {
			return se.Error()
		}
	case KindStorage:
		return "Local storage is unavailable; changes are kept in memory for this session."
	case KindNotFound:
		return "Not found."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Try again."
	}
	return "Something went wrong. Please try again."
}
