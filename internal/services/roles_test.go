package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	admins  []services.IdentityUser
	users   []services.IdentityUser
	err     error
	calls   atomic.Int32
	deleted []string
}

func (f *fakeProvider) ListUsers(ctx context.Context, token string) ([]services.IdentityUser, error) {
	return f.users, f.err
}

func (f *fakeProvider) DeleteUser(ctx context.Context, token, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProvider) ListAdmins(ctx context.Context, token string) ([]services.IdentityUser, error) {
	f.calls.Add(1)
	return f.admins, f.err
}

func TestResolveAdminFromIdentityRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	provider := &fakeProvider{}
	r := &services.RoleResolver{DB: db, Identity: provider, TTL: time.Minute}

	sess, err := r.Resolve(context.Background(), &auth.Identity{Subject: "u1", Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
	assert.Zero(t, provider.calls.Load())
}

func TestResolveAdminFromUserFlag(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.User{UserID: "u1", Name: "Stored", IsAdmin: true}).Error)

	r := &services.RoleResolver{DB: db, TTL: time.Minute}
	sess, err := r.Resolve(context.Background(), &auth.Identity{Subject: "u1"})
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
	assert.Equal(t, "Stored", sess.Name)
}

func TestResolveAdminListIsCached(t *testing.T) {
	db := testutil.NewTestDB(t)
	provider := &fakeProvider{admins: []services.IdentityUser{{ID: "boss"}}}
	r := &services.RoleResolver{DB: db, Cache: services.NewMemoryRoleCache(), Identity: provider, TTL: time.Minute}
	ctx := context.Background()

	sess, err := r.Resolve(ctx, &auth.Identity{Subject: "boss"})
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)

	sess, err = r.Resolve(ctx, &auth.Identity{Subject: "worker"})
	require.NoError(t, err)
	assert.False(t, sess.IsAdmin)

	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestResolveProviderFailureMeansNoAdmins(t *testing.T) {
	db := testutil.NewTestDB(t)
	provider := &fakeProvider{err: errors.New("provider down")}
	r := &services.RoleResolver{DB: db, Cache: services.NewMemoryRoleCache(), Identity: provider, TTL: time.Minute}
	ctx := context.Background()

	sess, err := r.Resolve(ctx, &auth.Identity{Subject: "boss"})
	require.NoError(t, err)
	assert.False(t, sess.IsAdmin)

	// Failures are not cached
	_, err = r.Resolve(ctx, &auth.Identity{Subject: "boss"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestResolveSessionExpiry(t *testing.T) {
	db := testutil.NewTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &services.RoleResolver{DB: db, TTL: 5 * time.Minute, Now: func() time.Time { return now }}
	ctx := context.Background()

	sess, err := r.Resolve(ctx, &auth.Identity{Subject: "u1"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), sess.ExpiresAt)

	tokenExpiry := now.Add(time.Minute)
	sess, err = r.Resolve(ctx, &auth.Identity{Subject: "u1", ExpiresAt: tokenExpiry})
	require.NoError(t, err)
	assert.Equal(t, tokenExpiry, sess.ExpiresAt)

	assert.False(t, sess.Expired(now))
	assert.True(t, sess.Expired(tokenExpiry))
}
