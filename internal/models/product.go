package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"                       json:"_id"`
	Name            string    `gorm:"size:200;not null"                              json:"name"`
	Quantity        int       `gorm:"not null;check:chk_products_quantity,quantity >= 0" json:"quantity"`
	OriginalPrice   int64     `gorm:"not null"                                       json:"originalPrice"`
	DiscountPercent int       `gorm:"not null"                                       json:"discountPercent"`
	DiscountPrice   int64     `gorm:"not null"                                       json:"discountPrice"`
	Description     string    `gorm:"type:text"                                      json:"description"`
	Category        string    `gorm:"size:100;index"                                 json:"category"`
	Images          []string  `gorm:"type:text;serializer:json"                      json:"images"`
	CreatedAt       time.Time `gorm:"index"                                          json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UnitPrice is what an order charges per unit: the discounted price when one is set.
func (p *Product) UnitPrice() int64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.OriginalPrice
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"                                  json:"-"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_cart_user_product;not null"  json:"-"`
	ProductID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_cart_user_product;not null"  json:"productId"`
	Quantity  int       `gorm:"not null;check:chk_cart_items_quantity,quantity > 0"       json:"quantity"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"                                     json:"-"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_wishlist_user_product;not null" json:"-"`
	ProductID uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_wishlist_user_product;not null" json:"productId"`
	CreatedAt time.Time `json:"-"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
