package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubTask struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	TaskID      uint64          `gorm:"not null;index" json:"task_id"`
	Title       string          `gorm:"type:varchar(200);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	StoryPoints int             `gorm:"not null" json:"story_points"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"budget"`
	Status      TaskStatus      `gorm:"type:varchar(15);not null;index" json:"status"`
	CreatedByID *uint64         `json:"created_by_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
