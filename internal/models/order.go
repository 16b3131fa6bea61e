package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusDelivered: {OrderStatusReturned},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// cancelled and returned are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMode string

const (
	PaymentCOD    PaymentMode = "COD"
	PaymentOnline PaymentMode = "ONLINE"
)

func (m PaymentMode) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

type Order struct {
	ID            uuid.UUID     `gorm:"type:char(36);primaryKey"                         json:"_id"`
	UserID        uuid.UUID     `gorm:"type:char(36);index;not null"                     json:"user"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"   json:"items"`
	CustomerName  string        `gorm:"size:120;not null"                                json:"customerName"`
	CustomerPhone string        `gorm:"size:20"                                          json:"customerPhone"`
	Address       AddressFields `gorm:"embedded;embeddedPrefix:address_"                 json:"address"`
	PaymentMode   PaymentMode   `gorm:"size:10;not null"                                 json:"paymentMode"`
	Status        OrderStatus   `gorm:"size:16;not null;index"                           json:"status"`
	TotalPrice    int64         `gorm:"not null"                                         json:"totalPrice"`
	ReturnReason  string        `gorm:"type:text"                                        json:"returnReason"`
	CreatedAt     time.Time     `gorm:"index"                                            json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a point-in-time copy of the product as it was sold.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"     json:"_id"`
	OrderID     uuid.UUID `gorm:"type:char(36);index;not null" json:"-"`
	Line        int       `gorm:"not null"                     json:"-"`
	ProductID   uuid.UUID `gorm:"type:char(36);not null"       json:"productId"`
	ProductName string    `gorm:"size:200;not null"            json:"productName"`
	Quantity    int       `gorm:"not null"                     json:"quantity"`
	UnitPrice   int64     `gorm:"not null"                     json:"unitPrice"`
	Images      []string  `gorm:"type:text;serializer:json"    json:"images"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Rating struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"                                    json:"_id"`
	UserID      uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_rating_user_product;not null"  json:"userId"`
	ProductID   uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_rating_user_product;not null;index" json:"productId"`
	Rating      *int      `json:"rating"`
	Description string    `gorm:"type:text;not null"                                          json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Address{}, &Testimonial{},
		&Product{}, &CartItem{}, &WishlistItem{},
		&Order{}, &OrderItem{}, &Rating{},
	}
}
