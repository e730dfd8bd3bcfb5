package repository

import (
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// WithDB returns a repository bound to db
func (r *GormTaskRepository) WithDB(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task. Responsibles set on the task are inserted in the same statement chain.
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForUpdate finds a task with a row lock. SQLite ignores the locking clause.
func (r *GormTaskRepository) FindByIDForUpdate(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Clauses(clause.Locking{Strength: "UPDATE"})

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateFields updates the given columns of a task
func (r *GormTaskRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatus writes the status column only
func (r *GormTaskRepository) UpdateStatus(id uint64, status models.TaskStatus) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error
}

// UpdateSpentBudget writes the spent_budget column only
func (r *GormTaskRepository) UpdateSpentBudget(id uint64, spent decimal.Decimal) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Update("spent_budget", spent).Error
}

// Delete removes a task and everything it owns in a transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.SubTask{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskResponsible{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskStatusLog{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// AssignResponsibles adds users to a task, ignoring users that are already responsible
func (r *GormTaskRepository) AssignResponsibles(taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	responsibles := make([]models.TaskResponsible, len(userIDs))
	for i, userID := range userIDs {
		responsibles[i] = models.TaskResponsible{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&responsibles).Error
}

// UnassignResponsibles removes users from the responsible set of a task
func (r *GormTaskRepository) UnassignResponsibles(taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&models.TaskResponsible{}).Error
}

// ListByProject lists the tasks of a project ordered by ID
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
