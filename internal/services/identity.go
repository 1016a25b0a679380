package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/auth0/go-auth0/management"
	log "github.com/sirupsen/logrus"
)

// ErrNoManagementToken is returned when neither the caller nor the server supplies a token
var ErrNoManagementToken = errors.New("no identity provider management token")

// IdentityUser is an account as the identity provider reports it
type IdentityUser struct {
	ID    string `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IdentityProvider is the identity provider's user administration API
type IdentityProvider interface {
	ListUsers(ctx context.Context, token string) ([]IdentityUser, error)
	DeleteUser(ctx context.Context, token, id string) error
	ListAdmins(ctx context.Context, token string) ([]IdentityUser, error)
}

// Auth0Provider talks to the Auth0 management API.
// Calls use the caller's bearer token, or ServerToken when the caller has none.
type Auth0Provider struct {
	Domain      string
	AdminRoleID string
	ServerToken string
	Options     []management.Option
}

const auth0PageSize = 100

func (p *Auth0Provider) client(token string) (*management.Management, error) {
	if token == "" {
		token = p.ServerToken
	}
	if token == "" {
		return nil, ErrNoManagementToken
	}

	opts := append([]management.Option{management.WithStaticToken(token)}, p.Options...)
	return management.New(p.Domain, opts...)
}

// ListUsers implements IdentityProvider
func (p *Auth0Provider) ListUsers(ctx context.Context, token string) ([]IdentityUser, error) {
	m, err := p.client(token)
	if err != nil {
		return nil, err
	}

	var users []IdentityUser
	for page := 0; ; page++ {
		list, err := m.User.List(ctx, management.Page(page), management.PerPage(auth0PageSize))
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, u := range list.Users {
			users = append(users, IdentityUser{ID: u.GetID(), Name: u.GetName(), Email: u.GetEmail()})
		}
		if !list.HasNext() {
			break
		}
	}

	return users, nil
}

// DeleteUser implements IdentityProvider
func (p *Auth0Provider) DeleteUser(ctx context.Context, token, id string) error {
	m, err := p.client(token)
	if err != nil {
		return err
	}
	if err := m.User.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// ListAdmins implements IdentityProvider
func (p *Auth0Provider) ListAdmins(ctx context.Context, token string) ([]IdentityUser, error) {
	if p.AdminRoleID == "" {
		return nil, fmt.Errorf("no admin role configured")
	}

	m, err := p.client(token)
	if err != nil {
		return nil, err
	}

	var users []IdentityUser
	for page := 0; ; page++ {
		list, err := m.Role.Users(ctx, p.AdminRoleID, management.Page(page), management.PerPage(auth0PageSize))
		if err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		for _, u := range list.Users {
			users = append(users, IdentityUser{ID: u.GetID(), Name: u.GetName(), Email: u.GetEmail()})
		}
		if !list.HasNext() {
			break
		}
	}

	return users, nil
}

// IdentityUsers lists the provider's users. Failures are logged and read as no users.
func IdentityUsers(ctx context.Context, p IdentityProvider, token string) []IdentityUser {
	if p == nil {
		return []IdentityUser{}
	}
	users, err := p.ListUsers(ctx, token)
	if err != nil {
		log.WithError(err).Warn("identity provider: listing users failed")
		return []IdentityUser{}
	}
	if users == nil {
		users = []IdentityUser{}
	}
	return users
}

// IdentityAdmins lists the admin role members. Failures are logged and read as no admins.
func IdentityAdmins(ctx context.Context, p IdentityProvider, token string) []IdentityUser {
	if p == nil {
		return []IdentityUser{}
	}
	admins, err := p.ListAdmins(ctx, token)
	if err != nil {
		log.WithError(err).Warn("identity provider: listing admins failed")
		return []IdentityUser{}
	}
	if admins == nil {
		admins = []IdentityUser{}
	}
	return admins
}

// DeleteIdentityUser removes the account at the provider. Failures are logged and reported as false.
func DeleteIdentityUser(ctx context.Context, p IdentityProvider, token, id string) bool {
	if p == nil {
		return false
	}
	if err := p.DeleteUser(ctx, token, id); err != nil {
		log.WithError(err).WithField("user", id).Warn("identity provider: deleting user failed")
		return false
	}
	return true
}
