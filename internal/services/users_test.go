package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	isAdmin, err := services.RegisterUser(ctx, db, "auth0|1", "Alex")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// Second login is idempotent
	isAdmin, err = services.RegisterUser(ctx, db, "auth0|1", "Alex")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", "auth0|1").Update("is_admin", true).Error)

	isAdmin, err = services.RegisterUser(ctx, db, "auth0|1", "Alex")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	users, err := services.ListUsers(ctx, db)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alex", users[0].Name)

	user, err := services.FindUser(ctx, db, "auth0|2")
	require.NoError(t, err)
	assert.Nil(t, user)
}
