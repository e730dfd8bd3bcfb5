package repository

import (
	"github.com/neusi/task-manager-api/internal/database"
	"github.com/neusi/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormStatusLogRepository is a GORM implementation of StatusLogRepository.
// It exposes no update or delete: entries are immutable once written.
type GormStatusLogRepository struct {
	db *gorm.DB
}

// NewStatusLogRepository creates a new StatusLogRepository
func NewStatusLogRepository(db *gorm.DB) StatusLogRepository {
	return &GormStatusLogRepository{db: db}
}

func (r *GormStatusLogRepository) WithDB(db *gorm.DB) StatusLogRepository {
	return &GormStatusLogRepository{db: db}
}

func (r *GormStatusLogRepository) Create(entry *models.TaskStatusLog) error {
	return r.db.Create(entry).Error
}

// ListByTask lists a task's entries, most recent first.
func (r *GormStatusLogRepository) ListByTask(taskID uint64) ([]models.TaskStatusLog, error) {
	var entries []models.TaskStatusLog
	if err := r.db.Preload("CreatedBy").
		Where("task_id = ?", taskID).
		Scopes(database.NewestFirst).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormStatusLogRepository) ListByTasksAndTarget(taskIDs []uint64, status models.TaskStatus) ([]models.TaskStatusLog, error) {
	if len(taskIDs) == 0 {
		return []models.TaskStatusLog{}, nil
	}

	var entries []models.TaskStatusLog
	if err := r.db.Where("task_id IN ? AND to_status = ?", taskIDs, status).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
