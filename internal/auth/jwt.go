package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer token claims the service reads
type Claims struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies bearer tokens issued by the identity provider.
// HS256 tokens are checked against Secret, RS256 tokens against PublicKeyPEM.
type JWTAuthenticator struct {
	keyFunc jwt.Keyfunc
	options []jwt.ParserOption
}

// NewJWTAuthenticator builds the authenticator from a shared secret or a PEM public key
func NewJWTAuthenticator(secret, publicKeyPEM, issuer, audience string) (*JWTAuthenticator, error) {
	a := &JWTAuthenticator{}

	switch {
	case publicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("invalid JWT public key: %w", err)
		}
		a.keyFunc = func(t *jwt.Token) (interface{}, error) { return key, nil }
		a.options = append(a.options, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
	case secret != "":
		key := []byte(secret)
		a.keyFunc = func(t *jwt.Token) (interface{}, error) { return key, nil }
		a.options = append(a.options, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	default:
		return nil, fmt.Errorf("a JWT secret or public key is required")
	}

	if issuer != "" {
		a.options = append(a.options, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		a.options = append(a.options, jwt.WithAudience(audience))
	}
	a.options = append(a.options, jwt.WithExpirationRequired())

	return a, nil
}

// Authenticate reads the token from the Authorization header, or from the
// token query parameter for WebSocket upgrades where browsers cannot set headers
func (a *JWTAuthenticator) Authenticate(c *fiber.Ctx) (*Identity, error) {
	raw := BearerToken(c)
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	return a.Parse(raw)
}

// Parse verifies a raw token and returns its identity
func (a *JWTAuthenticator) Parse(raw string) (*Identity, error) {
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, a.keyFunc, a.options...); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	identity := &Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Roles:   claims.Roles,
		Token:   raw,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, nil
}

// BearerToken returns the bearer token of the request, if any
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Query("token")
}
