package models

import "time"

type NotificationVerb string

const (
	VerbTaskAssigned  NotificationVerb = "task_assigned"
	VerbTaskCompleted NotificationVerb = "task_completed"
	VerbTaskReturned  NotificationVerb = "task_returned"
)

type Notification struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	RecipientID uint64           `gorm:"not null;index:idx_notifications_inbox,priority:1" json:"recipient_id"`
	ActorID     *uint64          `json:"actor_id"`
	Verb        NotificationVerb `gorm:"type:varchar(50);not null;index" json:"verb"`
	Title       string           `gorm:"type:varchar(200);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	URL         string           `gorm:"column:url;type:varchar(300)" json:"url"`
	IsRead      bool             `gorm:"not null;index:idx_notifications_inbox,priority:2" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_inbox,priority:3" json:"created_at"`

	// Relations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
