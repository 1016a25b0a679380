package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countSchools(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.School{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCreateSchoolSequentialDuplicateIsNoop(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	created, id, err := services.CreateSchool(ctx, db, &models.School{UserID: "u1", Name: "First"})
	require.NoError(t, err)
	assert.True(t, created)

	created, again, err := services.CreateSchool(ctx, db, &models.School{UserID: "u1", Name: "Second"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	assert.Equal(t, int64(1), countSchools(t, db, "u1"))

	school, err := services.FindSchoolByOwner(ctx, db, "u1")
	require.NoError(t, err)
	require.NotNil(t, school)
	assert.Equal(t, "First", school.Name)
}

func TestCreateSchoolConcurrentCreatesOneSchool(t *testing.T) {
	db := testutil.NewFileTestDB(t, 8)
	ctx := context.Background()

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]struct{}{}
		errs    []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, id, err := services.CreateSchool(ctx, db, &models.School{UserID: "racer", Name: "Racing"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if ok {
				created++
			}
			ids[id] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
	assert.Equal(t, int64(1), countSchools(t, db, "racer"))
}

func TestFindSchoolByOwnerAbsent(t *testing.T) {
	db := testutil.NewTestDB(t)

	school, err := services.FindSchoolByOwner(context.Background(), db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, school)
}

func TestSaveSchoolOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := &auth.Session{UserID: "u1"}
	admin := &auth.Session{UserID: "root", IsAdmin: true}

	created, _, err := services.SaveSchool(ctx, db, owner, &models.School{Name: "Mine"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), countSchools(t, db, "u1"))

	_, _, err = services.SaveSchool(ctx, db, owner, &models.School{UserID: "u2", Name: "Theirs"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	created, _, err = services.SaveSchool(ctx, db, admin, &models.School{UserID: "u2", Name: "Theirs"})
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = services.SaveSchool(ctx, db, nil, &models.School{UserID: "u3"})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestEditSchoolOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, id, err := services.CreateSchool(ctx, db, &models.School{UserID: "u1", Name: "Original"})
	require.NoError(t, err)

	intruder := &auth.Session{UserID: "u2"}

	// Claiming the school in the body does not help
	_, err = services.EditSchool(ctx, db, intruder, &models.School{Record: models.Record{ID: id}, UserID: "u2", Name: "Taken"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = services.EditSchool(ctx, db, intruder, &models.School{Record: models.Record{ID: id}, UserID: "u1", Name: "Taken"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	rows, err := services.EditSchool(ctx, db, &auth.Session{UserID: "u1"}, &models.School{Record: models.Record{ID: id}, UserID: "u1", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = services.EditSchool(ctx, db, &auth.Session{UserID: "root", IsAdmin: true}, &models.School{Record: models.Record{ID: id}, UserID: "u1", Name: "By Admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	school, err := services.Schools.Get(ctx, db, id)
	require.NoError(t, err)
	require.NotNil(t, school)
	assert.Equal(t, "By Admin", school.Name)
	assert.Equal(t, "u1", school.UserID)
}
