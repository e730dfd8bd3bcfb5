package database

import (
	"gorm.io/gorm"

	"github.com/neusi/task-manager-api/internal/utils"
)

// Paginate limits a query to one page
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}

// NewestFirst orders rows by creation time. ID breaks ties between equal timestamps.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}
