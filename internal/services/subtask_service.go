package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrSubTaskNotFound = errors.New("subtask not found")

// SubTaskService writes subtasks and keeps the parent task's spent budget in step.
type SubTaskService struct {
	db          *gorm.DB
	subtaskRepo repository.SubTaskRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	budget      *BudgetService
	identity    Identity
	locks       *TaskLocks
}

// NewSubTaskService creates a new SubTaskService
func NewSubTaskService(
	db *gorm.DB,
	subtaskRepo repository.SubTaskRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	budget *BudgetService,
	identity Identity,
	locks *TaskLocks,
) *SubTaskService {
	return &SubTaskService{
		db:          db,
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		budget:      budget,
		identity:    identity,
		locks:       locks,
	}
}

// CreateSubTaskInput represents input for creating a subtask
type CreateSubTaskInput struct {
	TaskID      uint64
	ActorID     uint64
	Title       string
	Description string
	StoryPoints int
	Budget      decimal.Decimal
	Status      models.TaskStatus
}

// UpdateSubTaskInput represents input for updating a subtask
type UpdateSubTaskInput struct {
	Title       *string
	Description *string
	StoryPoints *int
	Budget      *decimal.Decimal
	Status      *models.TaskStatus
}

// Create adds a subtask to a task. Admins and the task's responsibles may do so.
func (s *SubTaskService) Create(ctx context.Context, input CreateSubTaskInput) (*models.SubTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusNew
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}
	if err := ValidateBudget(input.Budget); err != nil {
		return nil, err
	}

	actor, err := s.findActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(input.TaskID)
	defer unlock()

	subtask := &models.SubTask{
		TaskID:      input.TaskID,
		Title:       title,
		Description: input.Description,
		StoryPoints: input.StoryPoints,
		Budget:      input.Budget,
		Status:      input.Status,
		CreatedByID: &actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.lockTask(tx, input.TaskID)
		if err != nil {
			return err
		}
		if !s.identity.IsAdminLike(actor) && !s.identity.IsResponsibleFor(actor, task) {
			return ErrTaskPermissionDenied
		}

		if err := s.subtaskRepo.WithDB(tx).Create(subtask); err != nil {
			return fmt.Errorf("failed to create subtask: %w", err)
		}

		_, err = s.budget.RecomputeTx(tx, input.TaskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return subtask, nil
}

// Update edits a subtask. Admins, its creator and the task's responsibles may do so.
func (s *SubTaskService) Update(ctx context.Context, subtaskID, actorID uint64, input UpdateSubTaskInput) (*models.SubTask, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *input.Status)
	}
	if input.Budget != nil {
		if err := ValidateBudget(*input.Budget); err != nil {
			return nil, err
		}
	}

	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	taskID, err := s.parentTaskID(ctx, subtaskID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(taskID)
	defer unlock()

	var subtask *models.SubTask
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.lockTask(tx, taskID)
		if err != nil {
			return err
		}

		subtask, err = s.subtaskRepo.WithDB(tx).FindByID(subtaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubTaskNotFound
			}
			return fmt.Errorf("failed to find subtask: %w", err)
		}

		isCreator := subtask.CreatedByID != nil && *subtask.CreatedByID == actor.ID
		if !s.identity.IsAdminLike(actor) && !isCreator && !s.identity.IsResponsibleFor(actor, task) {
			return ErrTaskPermissionDenied
		}

		if input.Title != nil {
			subtask.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			subtask.Description = *input.Description
		}
		if input.StoryPoints != nil {
			subtask.StoryPoints = *input.StoryPoints
		}
		if input.Budget != nil {
			subtask.Budget = *input.Budget
		}
		if input.Status != nil {
			subtask.Status = *input.Status
		}

		if err := s.subtaskRepo.WithDB(tx).Update(subtask); err != nil {
			return fmt.Errorf("failed to update subtask: %w", err)
		}

		_, err = s.budget.RecomputeTx(tx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return subtask, nil
}

// Delete removes a subtask. Only admins may do so.
func (s *SubTaskService) Delete(ctx context.Context, subtaskID, actorID uint64) error {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return err
	}
	if !s.identity.IsAdminLike(actor) {
		return ErrTaskPermissionDenied
	}

	taskID, err := s.parentTaskID(ctx, subtaskID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(taskID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.subtaskRepo.WithDB(tx).FindByID(subtaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubTaskNotFound
			}
			return fmt.Errorf("failed to find subtask: %w", err)
		}

		if err := s.subtaskRepo.WithDB(tx).Delete(subtaskID); err != nil {
			return fmt.Errorf("failed to delete subtask: %w", err)
		}

		_, err := s.budget.RecomputeTx(tx, taskID)
		return err
	})
}

func (s *SubTaskService) findActor(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.WithDB(s.db.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// parentTaskID resolves the task a subtask belongs to. A subtask never changes task.
func (s *SubTaskService) parentTaskID(ctx context.Context, subtaskID uint64) (uint64, error) {
	subtask, err := s.subtaskRepo.WithDB(s.db.WithContext(ctx)).FindByID(subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSubTaskNotFound
		}
		return 0, fmt.Errorf("failed to find subtask: %w", err)
	}
	return subtask.TaskID, nil
}

func (s *SubTaskService) lockTask(tx *gorm.DB, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.WithDB(tx).FindByIDForUpdate(taskID, "Responsibles")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
