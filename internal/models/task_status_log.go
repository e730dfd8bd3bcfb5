package models

import "time"

// TaskStatusLog is an immutable record of one accepted status transition.
type TaskStatusLog struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	TaskID      uint64     `gorm:"not null;index" json:"task_id"`
	FromStatus  TaskStatus `gorm:"type:varchar(32);not null" json:"from_status"`
	ToStatus    TaskStatus `gorm:"type:varchar(32);not null;index" json:"to_status"`
	Comment     string     `gorm:"type:text;not null" json:"comment"`
	CreatedByID *uint64    `json:"created_by_id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`

	// Relations
	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
