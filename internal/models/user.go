package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"          json:"_id"`
	ExternalID       uuid.UUID `gorm:"type:char(36);uniqueIndex;not null" json:"userId"`
	Name             string    `gorm:"size:120;not null"                 json:"name"`
	Email            string    `gorm:"size:254;uniqueIndex;not null"     json:"email"`
	PasswordHash     string    `gorm:"size:100;not null"                 json:"-"`
	PhoneNumber      string    `gorm:"size:20"                           json:"phoneNumber"`
	IsAdmin          bool      `gorm:"not null;default:false"            json:"isAdmin"`
	SessionTokenHash string    `gorm:"size:64"                           json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ExternalID == uuid.Nil {
		u.ExternalID = uuid.New()
	}
	return nil
}

// Admin lets the auth middleware evaluate the admin policy on the loaded record.
func (u *User) Admin() bool { return u.IsAdmin }

// AddressFields is shared by saved addresses and the snapshot copied into orders.
type AddressFields struct {
	HouseNumber string `gorm:"size:64"  json:"houseNumber"`
	Street      string `gorm:"size:200" json:"street"`
	Landmark    string `gorm:"size:200" json:"landmark"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Pincode     string `gorm:"size:12"  json:"pincode"`
}

func (a AddressFields) IsEmpty() bool {
	return a.HouseNumber == "" && a.Street == "" && a.Landmark == "" &&
		a.City == "" && a.State == "" && a.Pincode == ""
}

type Address struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"   json:"_id"`
	UserID        uuid.UUID `gorm:"type:char(36);index;not null" json:"-"`
	Position      int       `gorm:"not null"                   json:"-"`
	AddressFields `gorm:"embedded"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Testimonial struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"     json:"_id"`
	UserID      uuid.UUID `gorm:"type:char(36);index;not null" json:"-"`
	Name        string    `gorm:"size:120;not null"            json:"name"`
	Description string    `gorm:"type:text;not null"           json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
