package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/sportfed/internal/auth"
)

// TestSecret signs the HS256 tokens made by Token
const TestSecret = "sportfed-test-secret"

// Token signs a bearer token for the subject, valid for ttl
func Token(t *testing.T, subject, name string, ttl time.Duration, roles ...string) string {
	t.Helper()

	claims := auth.Claims{
		Name:  name,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}
