package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindSchoolByOwner returns the school owned by the user, or nil
func FindSchoolByOwner(ctx context.Context, db *gorm.DB, userID string) (*models.School, error) {
	var school models.School
	err := db.WithContext(ctx).Where("user_id = ?", userID).Take(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &school, nil
}

// CreateSchool inserts the school unless its owner already has one.
// The insert is conditional on the unique owner index, so concurrent
// calls for the same owner still produce a single school.
// It returns whether a school was created and the id of the owner's school.
func CreateSchool(ctx context.Context, db *gorm.DB, school *models.School) (bool, string, error) {
	school.SetRecordID("")

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(school)
	if result.Error != nil {
		return false, "", result.Error
	}

	if result.RowsAffected > 0 {
		return true, school.ID, nil
	}

	existing, err := FindSchoolByOwner(ctx, db, school.UserID)
	if err != nil {
		return false, "", err
	}
	if existing == nil {
		return false, "", fmt.Errorf("school for user %q was neither created nor found", school.UserID)
	}
	return false, existing.ID, nil
}

// SaveSchool creates the school for its owner. Only admins may create a school for someone else.
func SaveSchool(ctx context.Context, db *gorm.DB, sess *auth.Session, school *models.School) (bool, string, error) {
	if sess == nil {
		return false, "", fmt.Errorf("%w: no session", ErrForbidden)
	}
	if school.UserID == "" {
		school.UserID = sess.UserID
	}
	if school.UserID != sess.UserID && !sess.IsAdmin {
		return false, "", fmt.Errorf("%w: school belongs to another user", ErrForbidden)
	}

	return CreateSchool(ctx, db, school)
}

// EditSchool replaces the school stored under school.ID.
// Schools owned by someone else may only be edited by admins, and ownership
// can only be handed to another user by an admin.
func EditSchool(ctx context.Context, db *gorm.DB, sess *auth.Session, school *models.School) (int64, error) {
	if sess == nil {
		return 0, fmt.Errorf("%w: no session", ErrForbidden)
	}

	if !sess.IsAdmin {
		if school.UserID != sess.UserID {
			return 0, fmt.Errorf("%w: school belongs to another user", ErrForbidden)
		}

		stored, err := Schools.Get(ctx, db, school.ID)
		if err != nil {
			return 0, err
		}
		if stored != nil && stored.UserID != sess.UserID {
			return 0, fmt.Errorf("%w: school belongs to another user", ErrForbidden)
		}
	}

	return Schools.Update(ctx, db, school.ID, school)
}
