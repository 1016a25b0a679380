// Package auth holds the caller identity and the per-session authorization claim.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrUnauthenticated is returned when a request carries no usable credentials
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrUnavailable means the identity service could not be reached, so nothing
// can be said about the credentials
var ErrUnavailable = errors.New("authentication service unavailable")

// RoleAdmin is the role name that grants cross-school visibility
const RoleAdmin = "admin"

// Identity is what the identity provider vouches for
type Identity struct {
	Subject   string
	Name      string
	Email     string
	Roles     []string
	Token     string
	ExpiresAt time.Time
}

// HasRole reports whether the identity carries the role
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the authorization claim resolved for an identity.
// It expires and must be resolved again after ExpiresAt.
type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"-"`
}

// Expired reports whether the claim is past its lifetime
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authenticator extracts and verifies the caller identity from a request
type Authenticator interface {
	Authenticate(c *fiber.Ctx) (*Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator
type AuthenticatorFunc func(c *fiber.Ctx) (*Identity, error)

// Authenticate calls f(c)
func (f AuthenticatorFunc) Authenticate(c *fiber.Ctx) (*Identity, error) {
	return f(c)
}

type sessionKey struct{}

// LocalsKey is the fiber.Ctx locals key holding the *Session
const LocalsKey = "session"

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session carried by ctx, or nil
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// CurrentSession returns the session stored on the request, or nil
func CurrentSession(c *fiber.Ctx) *Session {
	s, _ := c.Locals(LocalsKey).(*Session)
	return s
}
