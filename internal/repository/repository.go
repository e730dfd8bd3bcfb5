package repository

import (
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// WithDB returns a copy bound to db (a transaction or a context-scoped session)
	WithDB(db *gorm.DB) TaskRepository

	// Create creates a new task together with its responsible users
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDForUpdate finds a task and locks its row until the surrounding transaction ends
	FindByIDForUpdate(id uint64, preload ...string) (*models.Task, error)

	// UpdateFields updates the given columns of a task
	UpdateFields(id uint64, fields map[string]interface{}) error

	// UpdateStatus writes the status column only
	UpdateStatus(id uint64, status models.TaskStatus) error

	// UpdateSpentBudget writes the spent_budget column only
	UpdateSpentBudget(id uint64, spent decimal.Decimal) error

	// Delete removes a task with its subtasks, responsibles and status logs
	Delete(id uint64) error

	// AssignResponsibles adds users to the responsible set of a task
	AssignResponsibles(taskID uint64, userIDs []uint64) error

	// UnassignResponsibles removes users from the responsible set of a task
	UnassignResponsibles(taskID uint64, userIDs []uint64) error

	// ListByProject lists the tasks of a project
	ListByProject(projectID uint64) ([]models.Task, error)
}

// SubTaskRepository defines the interface for subtask data access
type SubTaskRepository interface {
	WithDB(db *gorm.DB) SubTaskRepository

	// Create creates a new subtask
	Create(subtask *models.SubTask) error

	// FindByID finds a subtask by ID
	FindByID(id uint64) (*models.SubTask, error)

	// Update saves every column of a subtask
	Update(subtask *models.SubTask) error

	// Delete deletes a subtask
	Delete(id uint64) error

	// ListBudgetsByStatus returns the budgets of a task's subtasks in the given status
	ListBudgetsByStatus(taskID uint64, status models.TaskStatus) ([]decimal.Decimal, error)

	// CountByStatus returns the total number of subtasks of a task and how many are in status
	CountByStatus(taskID uint64, status models.TaskStatus) (total int64, matching int64, err error)
}

// StatusLogRepository defines the interface for the append-only transition log
type StatusLogRepository interface {
	WithDB(db *gorm.DB) StatusLogRepository

	// Create appends a log entry
	Create(entry *models.TaskStatusLog) error

	// ListByTask lists the entries of a task, most recent first
	ListByTask(taskID uint64) ([]models.TaskStatusLog, error)

	// ListByTasksAndTarget lists the entries of several tasks that moved into status, oldest first
	ListByTasksAndTarget(taskIDs []uint64, status models.TaskStatus) ([]models.TaskStatusLog, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	WithDB(db *gorm.DB) NotificationRepository

	// CreateBatch inserts all notifications in a single write
	CreateBatch(notifications []models.Notification) error

	// ListByRecipient lists a recipient's notifications, most recent first
	ListByRecipient(recipientID uint64, page utils.PaginationParams) ([]models.Notification, int64, error)

	// CountUnread counts a recipient's unread notifications
	CountUnread(recipientID uint64) (int64, error)

	// MarkRead marks one notification of a recipient as read
	MarkRead(id, recipientID uint64) error

	// MarkAllRead marks every unread notification of a recipient as read
	MarkAllRead(recipientID uint64) (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	WithDB(db *gorm.DB) ProjectRepository

	// Create creates a new project together with its members
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// CreateEpic creates an epic inside a project
	CreateEpic(epic *models.Epic) error

	// CreateSprint creates a sprint inside a project
	CreateSprint(sprint *models.Sprint) error

	// FindEpic finds an epic by ID
	FindEpic(id uint64) (*models.Epic, error)

	// FindSprint finds a sprint by ID
	FindSprint(id uint64) (*models.Sprint, error)

	// ListEpics lists the epics of a project ordered by ID
	ListEpics(projectID uint64) ([]models.Epic, error)

	// ListSprints lists the sprints of a project, earliest start first
	ListSprints(projectID uint64) ([]models.Sprint, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	WithDB(db *gorm.DB) UserRepository

	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with groups loaded
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username with groups loaded
	FindByUsername(username string) (*models.User, error)

	// UsernameExists reports whether any user, deactivated ones included, holds the username
	UsernameExists(username string) (bool, error)

	// Deactivate soft-deletes a user. Rows that reference the user keep their foreign key.
	Deactivate(id uint64) error

	// ListAdminLike lists superusers, staff and members of any of the given groups
	ListAdminLike(adminGroups []string) ([]models.User, error)

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(userIDs []uint64) (int64, error)

	// FindOrCreateGroups returns the groups with the given names, creating missing ones
	FindOrCreateGroups(names []string) ([]models.Group, error)
}
