package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrAdminRequired        = errors.New("only admins can perform this action")
	ErrNoUserIDsProvided    = errors.New("at least one user ID is required")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidTaskAssignee  = errors.New("one or more users do not exist")
	ErrInvalidPriority      = errors.New("invalid task priority")
	ErrInvalidEpic          = errors.New("epic does not exist in the task's project")
	ErrInvalidSprint        = errors.New("sprint does not exist in the task's project")
)

// TaskService handles task business logic other than status changes
type TaskService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	budget      *BudgetService
	audit       *AuditService
	notifier    *NotificationService
	identity    Identity
	locks       *TaskLocks
}

// NewTaskService creates a new TaskService. notifier may be nil.
func NewTaskService(
	db *gorm.DB,
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	budget *BudgetService,
	audit *AuditService,
	notifier *NotificationService,
	identity Identity,
	locks *TaskLocks,
) *TaskService {
	return &TaskService{
		db:          db,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		budget:      budget,
		audit:       audit,
		notifier:    notifier,
		identity:    identity,
		locks:       locks,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID      uint64
	ActorID        uint64
	EpicID         *uint64
	SprintID       *uint64
	Title          string
	Description    string
	KPIs           string
	StoryPoints    int
	Priority       models.TaskPriority
	Budget         decimal.Decimal
	ResponsibleIDs []uint64
}

// UpdateTaskInput represents input for updating a task. Status is changed through TransitionService only.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	KPIs        *string
	StoryPoints *int
	Priority    *models.TaskPriority
	Budget      *decimal.Decimal
	EpicID      *uint64
	SprintID    *uint64
}

// AssignUsersInput represents input for assigning users to a task
type AssignUsersInput struct {
	TaskID  uint64
	ActorID uint64
	UserIDs []uint64
}

// TaskView is a task together with its derived budget figures
type TaskView struct {
	Task   *models.Task
	Budget *BudgetSummary
}

// GetTask returns a task with its budget summary. Admins and responsibles may read it.
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID uint64) (*TaskView, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID, "Project", "CreatedBy", "Responsibles", "Responsibles.User", "SubTasks")
	if err != nil {
		return nil, err
	}

	if !s.identity.IsAdminLike(actor) && !s.identity.IsResponsibleFor(actor, task) {
		return nil, ErrTaskPermissionDenied
	}

	summary, err := s.budget.Summary(ctx, task)
	if err != nil {
		return nil, err
	}

	return &TaskView{Task: task, Budget: summary}, nil
}

// CreateTask creates a task in status new and notifies its responsibles
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityPlan
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, input.Priority)
	}
	if err := ValidateBudget(input.Budget); err != nil {
		return nil, err
	}

	actor, err := s.requireAdmin(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.WithDB(s.db.WithContext(ctx)).FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.ensurePlanningRefs(ctx, input.ProjectID, input.EpicID, input.SprintID); err != nil {
		return nil, err
	}

	userIDs := uniqueUint64(input.ResponsibleIDs)
	if err := s.ensureUsersExist(ctx, userIDs); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		EpicID:      input.EpicID,
		SprintID:    input.SprintID,
		Title:       title,
		Description: input.Description,
		KPIs:        input.KPIs,
		StoryPoints: input.StoryPoints,
		Priority:    input.Priority,
		Status:      models.TaskStatusNew,
		Budget:      input.Budget,
		SpentBudget: decimal.Zero,
		CreatedByID: &actor.ID,
	}
	for _, id := range userIDs {
		task.Responsibles = append(task.Responsibles, models.TaskResponsible{UserID: id})
	}

	if err := s.taskRepo.WithDB(s.db.WithContext(ctx)).Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.findTask(ctx, task.ID, "Project", "Responsibles", "Responsibles.User")
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyTaskAssigned(ctx, created, &actor.ID); err != nil {
			log.Printf("task %d: assignment notification failed: %v", created.ID, err)
		}
	}

	return created, nil
}

// UpdateTask updates the descriptive fields of a task
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePlanningRefs(ctx, task.ProjectID, input.EpicID, input.SprintID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.KPIs != nil {
		fields["kpis"] = *input.KPIs
	}
	if input.StoryPoints != nil {
		fields["story_points"] = *input.StoryPoints
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, *input.Priority)
		}
		fields["priority"] = *input.Priority
	}
	if input.Budget != nil {
		if err := ValidateBudget(*input.Budget); err != nil {
			return nil, err
		}
		fields["budget"] = *input.Budget
	}
	if input.EpicID != nil {
		fields["epic_id"] = *input.EpicID
	}
	if input.SprintID != nil {
		fields["sprint_id"] = *input.SprintID
	}

	if err := s.taskRepo.WithDB(s.db.WithContext(ctx)).UpdateFields(taskID, fields); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.findTask(ctx, taskID, "Project", "Responsibles", "Responsibles.User")
}

// DeleteTask deletes a task with its subtasks and status log
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	unlock := s.locks.Lock(taskID)
	defer unlock()

	if _, err := s.findTask(ctx, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.WithDB(s.db.WithContext(ctx)).Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignResponsibles adds users to the responsible set of a task
func (s *TaskService) AssignResponsibles(ctx context.Context, input AssignUsersInput) error {
	if len(input.UserIDs) == 0 {
		return ErrNoUserIDsProvided
	}

	if _, err := s.requireAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	if _, err := s.findTask(ctx, input.TaskID); err != nil {
		return err
	}

	userIDs := uniqueUint64(input.UserIDs)
	if err := s.ensureUsersExist(ctx, userIDs); err != nil {
		return err
	}

	if err := s.taskRepo.WithDB(s.db.WithContext(ctx)).AssignResponsibles(input.TaskID, userIDs); err != nil {
		return fmt.Errorf("failed to assign users: %w", err)
	}

	return nil
}

// UnassignResponsibles removes users from the responsible set of a task
func (s *TaskService) UnassignResponsibles(ctx context.Context, input AssignUsersInput) error {
	if len(input.UserIDs) == 0 {
		return ErrNoUserIDsProvided
	}

	if _, err := s.requireAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	if _, err := s.findTask(ctx, input.TaskID); err != nil {
		return err
	}

	if err := s.taskRepo.WithDB(s.db.WithContext(ctx)).UnassignResponsibles(input.TaskID, uniqueUint64(input.UserIDs)); err != nil {
		return fmt.Errorf("failed to unassign users: %w", err)
	}

	return nil
}

// ListLogs returns the status history of a task, most recent first
func (s *TaskService) ListLogs(ctx context.Context, taskID, actorID uint64) ([]models.TaskStatusLog, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID, "Responsibles")
	if err != nil {
		return nil, err
	}

	if !s.identity.IsAdminLike(actor) && !s.identity.IsResponsibleFor(actor, task) {
		return nil, ErrTaskPermissionDenied
	}

	return s.audit.ListForTask(ctx, taskID)
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.WithDB(s.db.WithContext(ctx)).FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findActor(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.WithDB(s.db.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *TaskService) requireAdmin(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.findActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.identity.IsAdminLike(user) {
		return nil, ErrAdminRequired
	}
	return user, nil
}

func (s *TaskService) ensureUsersExist(ctx context.Context, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	count, err := s.userRepo.WithDB(s.db.WithContext(ctx)).CountByIDs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}
	return nil
}

// ensurePlanningRefs checks that the epic and sprint, when given, exist inside projectID
func (s *TaskService) ensurePlanningRefs(ctx context.Context, projectID uint64, epicID, sprintID *uint64) error {
	repo := s.projectRepo.WithDB(s.db.WithContext(ctx))

	if epicID != nil {
		epic, err := repo.FindEpic(*epicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidEpic
			}
			return fmt.Errorf("failed to find epic: %w", err)
		}
		if epic.ProjectID != projectID {
			return ErrInvalidEpic
		}
	}

	if sprintID != nil {
		sprint, err := repo.FindSprint(*sprintID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidSprint
			}
			return fmt.Errorf("failed to find sprint: %w", err)
		}
		if sprint.ProjectID != projectID {
			return ErrInvalidSprint
		}
	}

	return nil
}

// uniqueUint64 removes duplicates while keeping the first occurrence order
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
