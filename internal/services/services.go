package services

import (
	"github.com/neusi/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

// Services bundles every service built on one database handle
type Services struct {
	Identity      Identity
	Auth          *AuthService
	Audit         *AuditService
	Budget        *BudgetService
	Notifications *NotificationService
	Transitions   *TransitionService
	Tasks         *TaskService
	SubTasks      *SubTaskService
	Projects      *ProjectService
}

// New wires the services. adminGroups names the groups whose members are admin-like.
func New(db *gorm.DB, adminGroups []string) *Services {
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubTaskRepository(db)
	logRepo := repository.NewStatusLogRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)

	identity := NewGroupIdentity(adminGroups)
	locks := NewTaskLocks()

	audit := NewAuditService(db, logRepo, taskRepo)
	budget := NewBudgetService(db, taskRepo, subtaskRepo, locks)
	notifications := NewNotificationService(db, notifRepo, userRepo, identity)

	return &Services{
		Identity:      identity,
		Auth:          NewAuthService(userRepo, identity),
		Audit:         audit,
		Budget:        budget,
		Notifications: notifications,
		Transitions:   NewTransitionService(db, taskRepo, userRepo, audit, notifications, identity, locks),
		Tasks:         NewTaskService(db, taskRepo, projectRepo, userRepo, budget, audit, notifications, identity, locks),
		SubTasks:      NewSubTaskService(db, subtaskRepo, taskRepo, userRepo, budget, identity, locks),
		Projects:      NewProjectService(db, projectRepo, taskRepo, userRepo, audit, identity),
	}
}
