package services

import (
	"context"
	"slices"
	"time"

	"github.com/localnerve/sportfed/internal/auth"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RoleResolver turns an authenticated identity into an expiring session claim
type RoleResolver struct {
	DB       *gorm.DB
	Cache    RoleCache
	Identity IdentityProvider
	TTL      time.Duration
	Now      func() time.Time
}

func (r *RoleResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve builds the session for the identity. The caller is an admin when the
// identity carries the admin role, the local user record is flagged, or the
// identity provider lists them in the admin role.
func (r *RoleResolver) Resolve(ctx context.Context, identity *auth.Identity) (*auth.Session, error) {
	now := r.now()
	sess := &auth.Session{
		UserID:    identity.Subject,
		Name:      identity.Name,
		Token:     identity.Token,
		ExpiresAt: now.Add(r.TTL),
	}
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(sess.ExpiresAt) {
		sess.ExpiresAt = identity.ExpiresAt
	}

	if identity.HasRole(auth.RoleAdmin) {
		sess.IsAdmin = true
		return sess, nil
	}

	user, err := FindUser(ctx, r.DB, identity.Subject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if sess.Name == "" {
			sess.Name = user.Name
		}
		if user.IsAdmin {
			sess.IsAdmin = true
			return sess, nil
		}
	}

	sess.IsAdmin = slices.Contains(r.adminIDs(ctx), identity.Subject)
	return sess, nil
}

// adminIDs reads the admin list from the cache, refreshing it from the identity provider on a miss
func (r *RoleResolver) adminIDs(ctx context.Context) []string {
	if r.Cache != nil {
		ids, ok, err := r.Cache.Admins(ctx)
		if err != nil {
			log.WithError(err).Warn("role cache read failed")
		} else if ok {
			return ids
		}
	}

	if r.Identity == nil {
		return nil
	}

	admins, err := r.Identity.ListAdmins(ctx, "")
	if err != nil {
		// Not cached, so the next session tries again
		log.WithError(err).Warn("identity provider: admin list refresh failed")
		return nil
	}

	ids := make([]string, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}

	if r.Cache != nil {
		if err := r.Cache.StoreAdmins(ctx, ids, r.TTL); err != nil {
			log.WithError(err).Warn("role cache write failed")
		}
	}

	return ids
}
