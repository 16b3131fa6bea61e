package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SetSessionToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	return r.updateUser(ctx, userID, "session_token_hash", tokenHash)
}

func (r *GormRepo) SetAdmin(ctx context.Context, userID uuid.UUID) error {
	return r.updateUser(ctx, userID, "is_admin", true)
}

func (r *GormRepo) SetPhoneNumber(ctx context.Context, userID uuid.UUID, phone string) error {
	return r.updateUser(ctx, userID, "phone_number", phone)
}

// updateUser checks existence separately: MySQL reports changed rows, so an
// update writing the current value affects zero rows.
func (r *GormRepo) updateUser(ctx context.Context, userID uuid.UUID, column string, value any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update(column, value).Error
	})
}

// ListUsers returns users newest first. limit <= 0 means everything.
func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	q := r.DB.WithContext(ctx).Model(&models.User{}).Order("created_at DESC")
	if err := paginate(q, offset, limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}
