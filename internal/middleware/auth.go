package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/types"
	log "github.com/sirupsen/logrus"
)

// Authenticate verifies the caller and resolves their session claim.
// The session is stored in the request locals and in the user context.
func Authenticate(authn auth.Authenticator, resolver *services.RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := authn.Authenticate(c)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return types.NewCustomError(fiber.StatusUnauthorized, "auth.authentication", "%v", err)
			}
			if errors.Is(err, auth.ErrUnavailable) {
				log.WithError(err).Error("authentication service unavailable")
				return types.NewCustomError(fiber.StatusServiceUnavailable, "auth.unavailable", "%v", err)
			}
			return types.NewCustomError(fiber.StatusForbidden, "auth.authentication", "Invalid session: %v", err)
		}

		sess, err := resolver.Resolve(c.UserContext(), identity)
		if err != nil {
			log.WithError(err).WithField("sub", identity.Subject).Error("role resolution failed")
			return types.NewCustomError(fiber.StatusInternalServerError, "auth.roles", "%v", err)
		}

		c.Locals(auth.LocalsKey, sess)
		c.SetUserContext(auth.WithSession(c.UserContext(), sess))

		return c.Next()
	}
}

// AuthAdmin allows only admin sessions through
func AuthAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := auth.CurrentSession(c)
		if sess == nil || !sess.IsAdmin {
			return types.NewCustomError(fiber.StatusForbidden, "auth.authorization.admin", "Admin role required")
		}
		if sess.Expired(time.Now()) {
			return types.NewCustomError(fiber.StatusUnauthorized, "auth.authorization.admin", "Session expired")
		}
		return c.Next()
	}
}

// Upgrade admits WebSocket upgrade requests from allowed origins
func Upgrade(allowedOrigins []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !originAllowed(allowedOrigins, c.Get(fiber.HeaderOrigin)) {
			return types.NewCustomError(fiber.StatusForbidden, "realtime.origin", "Origin %q not allowed", c.Get(fiber.HeaderOrigin))
		}
		return c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
