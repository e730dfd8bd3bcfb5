package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	FullName     string         `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	IsSuperuser  bool           `gorm:"not null" json:"is_superuser"`
	IsStaff      bool           `gorm:"not null" json:"is_staff"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // set by deactivation

	// Relations
	Groups []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`
}

// DisplayName returns the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

// Group is a named role bucket. Membership in an elevated group makes a user admin-like.
type Group struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
}

// TableName avoids GROUPS, a reserved word on MySQL 8.
func (Group) TableName() string {
	return "auth_groups"
}
