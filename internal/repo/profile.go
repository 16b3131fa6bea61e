package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
)

func (r *GormRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var items []models.Address
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddAddress appends to the end of the user's list.
func (r *GormRepo) AddAddress(ctx context.Context, addr *models.Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&models.Address{}).
			Select("COALESCE(MAX(position) + 1, 0)").
			Where("user_id = ?", addr.UserID).
			Scan(&next).Error; err != nil {
			return err
		}
		addr.Position = next
		return tx.Create(addr).Error
	})
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// UpdateTestimonial patches only the caller's own testimonial.
func (r *GormRepo) UpdateTestimonial(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (*models.Testimonial, error) {
	var t models.Testimonial
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TestimonialRow struct {
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	TestimonialID uuid.UUID `json:"testimonialId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *GormRepo) ListTestimonials(ctx context.Context) ([]TestimonialRow, error) {
	var rows []TestimonialRow
	err := r.DB.WithContext(ctx).
		Table("testimonials AS t").
		Select("u.id AS user_id, u.name AS user_name, u.email AS user_email, t.id AS testimonial_id, t.name AS name, t.description AS description, t.created_at AS created_at").
		Joins("JOIN users AS u ON u.id = t.user_id").
		Order("t.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
