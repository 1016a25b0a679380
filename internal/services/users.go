package services

import (
	"context"
	"errors"

	"github.com/localnerve/sportfed/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindUser returns the user with the external identity id, or nil
func FindUser(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// RegisterUser records the user on first login and reports the stored admin flag.
// A user seen for the first time is never an admin.
func RegisterUser(ctx context.Context, db *gorm.DB, userID, name string) (bool, error) {
	user := models.User{UserID: userID, Name: name}

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&user)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	existing, err := FindUser(ctx, db, userID)
	if err != nil || existing == nil {
		return false, err
	}
	return existing.IsAdmin, nil
}

// ListUsers returns every registered user
func ListUsers(ctx context.Context, db *gorm.DB) ([]models.User, error) {
	return Users.List(ctx, db, nil)
}
