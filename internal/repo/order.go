package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/models"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("line ASC")
}

// StockError names the product whose guarded decrement matched no row.
type StockError struct {
	ProductID uuid.UUID
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// PlaceOrder decrements stock for every line and inserts the order in one
// transaction. Each decrement only applies while quantity >= requested, so
// concurrent checkouts cannot drive stock negative; any miss rolls back all lines.
func (r *GormRepo) PlaceOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StockError{ProductID: item.ProductID}
			}
		}

		return tx.Create(order).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", orderedItems).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrder moves an order from one status to another. It matches on the
// current status so two concurrent transitions cannot both win.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, returnReason string) (bool, error) {
	updates := map[string]any{"status": to}
	if to == models.OrderStatusReturned {
		updates["return_reason"] = returnReason
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders returns every order newest first, optionally filtered by status.
func (r *GormRepo) ListOrders(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	list := r.DB.WithContext(ctx).Preload("Items", orderedItems).Order("created_at DESC")
	if status != "" {
		list = list.Where("status = ?", status)
	}
	if err := paginate(list, offset, limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("order_items AS i").
		Joins("JOIN orders AS o ON o.id = i.order_id").
		Where("o.user_id = ? AND i.product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) RatingExists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Rating{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateRating(ctx context.Context, rating *models.Rating) error {
	return r.DB.WithContext(ctx).Create(rating).Error
}

func (r *GormRepo) ListRatings(ctx context.Context, productID uuid.UUID) ([]models.Rating, error) {
	var items []models.Rating
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
