package repository

import (
	"github.com/neusi/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) WithDB(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user with its groups
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Groups").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Groups").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Deactivate returns gorm.ErrRecordNotFound when no active user has the ID
func (r *GormUserRepository) Deactivate(id uint64) error {
	result := r.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAdminLike lists admin-like users ordered by ID, each at most once
func (r *GormUserRepository) ListAdminLike(adminGroups []string) ([]models.User, error) {
	query := r.db.Where("is_superuser = ? OR is_staff = ?", true, true)

	if len(adminGroups) > 0 {
		groupMembers := r.db.Table("user_groups").
			Select("user_groups.user_id").
			Joins("JOIN auth_groups ON auth_groups.id = user_groups.group_id").
			Where("auth_groups.name IN ?", adminGroups)
		query = r.db.Where("is_superuser = ? OR is_staff = ? OR id IN (?)", true, true, groupMembers)
	}

	var users []models.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountByIDs counts how many of the given user IDs exist
func (r *GormUserRepository) CountByIDs(userIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", userIDs).Count(&count).Error
	return count, err
}

func (r *GormUserRepository) FindOrCreateGroups(names []string) ([]models.Group, error) {
	groups := make([]models.Group, 0, len(names))
	for _, name := range names {
		group := models.Group{Name: name}
		if err := r.db.Where(models.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}
