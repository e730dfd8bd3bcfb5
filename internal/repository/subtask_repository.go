package repository

import (
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSubTaskRepository is a GORM implementation of SubTaskRepository
type GormSubTaskRepository struct {
	db *gorm.DB
}

// NewSubTaskRepository creates a new SubTaskRepository
func NewSubTaskRepository(db *gorm.DB) SubTaskRepository {
	return &GormSubTaskRepository{db: db}
}

func (r *GormSubTaskRepository) WithDB(db *gorm.DB) SubTaskRepository {
	return &GormSubTaskRepository{db: db}
}

func (r *GormSubTaskRepository) Create(subtask *models.SubTask) error {
	return r.db.Create(subtask).Error
}

func (r *GormSubTaskRepository) FindByID(id uint64) (*models.SubTask, error) {
	var subtask models.SubTask
	if err := r.db.First(&subtask, id).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *GormSubTaskRepository) Update(subtask *models.SubTask) error {
	return r.db.Save(subtask).Error
}

func (r *GormSubTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.SubTask{}, id).Error
}

// ListBudgetsByStatus loads the raw budgets so the caller can sum them in decimal arithmetic.
func (r *GormSubTaskRepository) ListBudgetsByStatus(taskID uint64, status models.TaskStatus) ([]decimal.Decimal, error) {
	var subtasks []models.SubTask
	if err := r.db.Select("id", "budget").
		Where("task_id = ? AND status = ?", taskID, status).
		Order("id").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}

	budgets := make([]decimal.Decimal, len(subtasks))
	for i, s := range subtasks {
		budgets[i] = s.Budget
	}
	return budgets, nil
}

func (r *GormSubTaskRepository) CountByStatus(taskID uint64, status models.TaskStatus) (int64, int64, error) {
	var total int64
	if err := r.db.Model(&models.SubTask{}).
		Where("task_id = ?", taskID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var matching int64
	if err := r.db.Model(&models.SubTask{}).
		Where("task_id = ? AND status = ?", taskID, status).
		Count(&matching).Error; err != nil {
		return 0, 0, err
	}

	return total, matching, nil
}
