// authorizer.go
//
// Record service for sports federation schools, trainers, athletes, competitions and entries
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sportfed.
// sportfed is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sportfed is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sportfed.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/sportfed/internal/utils"
	log "github.com/sirupsen/logrus"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

// AuthorizerAuthenticator validates Authorizer session cookies.
// The client is created on the first request, once the public host is known,
// and creation is retried on later requests until it succeeds.
type AuthorizerAuthenticator struct {
	URL      string
	ClientID string

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// authorizerUser is the part of the Authorizer user the service reads
type authorizerUser struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	GivenName  *string  `json:"given_name"`
	FamilyName *string  `json:"family_name"`
	Nickname   *string  `json:"nickname"`
	Roles      []string `json:"roles"`
}

func (u authorizerUser) displayName() string {
	switch {
	case u.Nickname != nil && *u.Nickname != "":
		return *u.Nickname
	case u.GivenName != nil && u.FamilyName != nil:
		return *u.GivenName + " " + *u.FamilyName
	case u.GivenName != nil:
		return *u.GivenName
	}
	return u.Email
}

// IsInitialized returns true if the Authorizer client is initialized
func (a *AuthorizerAuthenticator) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client != nil
}

func (a *AuthorizerAuthenticator) init(ctx context.Context, requestProtocol, requestHost string) (*authorizer.AuthorizerClient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	// Ping the Authorizer service first
	if err := utils.PingAuthorizer(ctx, a.URL); err != nil {
		return nil, fmt.Errorf("%w: authorizer ping failed: %v", ErrUnavailable, err)
	}

	redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
	log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
		a.URL, a.ClientID, redirectURL)

	client, err := authorizer.NewAuthorizerClient(a.ClientID, a.URL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create authorizer client: %v", ErrUnavailable, err)
	}

	a.client = client
	return client, nil
}

// Authenticate validates the session cookie with the Authorizer service
func (a *AuthorizerAuthenticator) Authenticate(c *fiber.Ctx) (*Identity, error) {
	cookie := c.Cookies(SessionCookie)
	if cookie == "" {
		return nil, ErrUnauthenticated
	}

	client, err := a.init(c.UserContext(), c.Protocol(), c.Hostname())
	if err != nil {
		return nil, err
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}

	// Check if session is valid
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	var user authorizerUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}

	return &Identity{
		Subject: user.ID,
		Name:    user.displayName(),
		Email:   user.Email,
		Roles:   user.Roles,
	}, nil
}
