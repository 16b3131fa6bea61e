package repo

import (
	"errors"

	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// paginate applies offset/limit only when limit is positive.
func paginate(q *gorm.DB, offset, limit int) *gorm.DB {
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	return q
}
