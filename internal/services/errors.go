package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/localnerve/sportfed/internal/auth"
)

var (
	// ErrMalformedID is returned for record ids that cannot exist
	ErrMalformedID = errors.New("malformed id")

	// ErrForbidden is returned when the session may not perform the operation
	ErrForbidden = errors.New("forbidden")
)

// ValidateID checks that id has the shape of a generated record id
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: cast to id failed for value %q", ErrMalformedID, id)
	}
	return nil
}

// RequireAdmin allows only admin sessions
func RequireAdmin(sess *auth.Session) error {
	if sess == nil || !sess.IsAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
