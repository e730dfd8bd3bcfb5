package repository

import (
	"github.com/neusi/task-manager-api/internal/database"
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/utils"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) WithDB(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateBatch inserts all rows with one INSERT
func (r *GormNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Omit("Actor").Create(&notifications).Error
}

func (r *GormNotificationRepository) ListByRecipient(recipientID uint64, page utils.PaginationParams) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := r.db.Where("recipient_id = ?", recipientID).
		Preload("Actor").
		Scopes(database.NewestFirst, database.Paginate(page)).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *GormNotificationRepository) CountUnread(recipientID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead returns gorm.ErrRecordNotFound when the notification does not belong to the recipient
func (r *GormNotificationRepository) MarkRead(id, recipientID uint64) error {
	var notification models.Notification
	if err := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&notification).Error; err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	return r.db.Model(&notification).Update("is_read", true).Error
}

func (r *GormNotificationRepository) MarkAllRead(recipientID uint64) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
