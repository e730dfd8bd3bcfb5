package repository

import (
	"github.com/neusi/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) WithDB(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project; members set on the project are inserted with it
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) CreateEpic(epic *models.Epic) error {
	return r.db.Create(epic).Error
}

func (r *GormProjectRepository) CreateSprint(sprint *models.Sprint) error {
	return r.db.Create(sprint).Error
}

func (r *GormProjectRepository) FindEpic(id uint64) (*models.Epic, error) {
	var epic models.Epic
	if err := r.db.First(&epic, id).Error; err != nil {
		return nil, err
	}
	return &epic, nil
}

func (r *GormProjectRepository) FindSprint(id uint64) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := r.db.First(&sprint, id).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (r *GormProjectRepository) ListEpics(projectID uint64) ([]models.Epic, error) {
	var epics []models.Epic
	if err := r.db.Where("project_id = ?", projectID).Order("id").Find(&epics).Error; err != nil {
		return nil, err
	}
	return epics, nil
}

// ListSprints puts sprints without a start date last
func (r *GormProjectRepository) ListSprints(projectID uint64) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := r.db.Where("project_id = ?", projectID).
		Order("CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date, id").
		Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}
