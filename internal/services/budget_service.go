package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MoneyPlaces is the number of decimal places stored for currency amounts
const MoneyPlaces = 2

var (
	ErrNegativeBudget  = errors.New("budget cannot be negative")
	ErrBudgetPrecision = errors.New("budget must have at most 2 decimal places")
)

// BudgetService keeps Task.SpentBudget equal to the budget of the task's completed subtasks.
type BudgetService struct {
	db          *gorm.DB
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubTaskRepository
	locks       *TaskLocks
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(db *gorm.DB, taskRepo repository.TaskRepository, subtaskRepo repository.SubTaskRepository, locks *TaskLocks) *BudgetService {
	return &BudgetService{
		db:          db,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		locks:       locks,
	}
}

// BudgetSummary holds the derived budget and progress figures of a task
type BudgetSummary struct {
	Budget            decimal.Decimal
	Spent             decimal.Decimal
	Remaining         decimal.Decimal
	SubtasksTotal     int64
	SubtasksCompleted int64
	ProgressPercent   float64
}

// Recompute recalculates the spent budget of taskID in its own transaction.
// A missing task is not an error: nothing is written.
func (s *BudgetService) Recompute(ctx context.Context, taskID uint64) error {
	unlock := s.locks.Lock(taskID)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.RecomputeTx(tx, taskID)
		return err
	})
}

// RecomputeTx recalculates the spent budget inside tx. The caller must hold the task lock.
func (s *BudgetService) RecomputeTx(tx *gorm.DB, taskID uint64) (decimal.Decimal, error) {
	if _, err := s.taskRepo.WithDB(tx).FindByIDForUpdate(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to lock task: %w", err)
	}

	budgets, err := s.subtaskRepo.WithDB(tx).ListBudgetsByStatus(taskID, models.TaskStatusCompleted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load completed subtasks: %w", err)
	}

	spent := decimal.Zero
	for _, b := range budgets {
		spent = spent.Add(b)
	}

	if err := s.taskRepo.WithDB(tx).UpdateSpentBudget(taskID, spent); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update spent budget: %w", err)
	}

	return spent, nil
}

// Summary derives remaining budget and subtask progress for a loaded task
func (s *BudgetService) Summary(ctx context.Context, task *models.Task) (*BudgetSummary, error) {
	total, completed, err := s.subtaskRepo.WithDB(s.db.WithContext(ctx)).CountByStatus(task.ID, models.TaskStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}

	return &BudgetSummary{
		Budget:            task.Budget,
		Spent:             task.SpentBudget,
		Remaining:         task.RemainingBudget(),
		SubtasksTotal:     total,
		SubtasksCompleted: completed,
		ProgressPercent:   percent(completed, total),
	}, nil
}

// percent returns part/total*100, or 0 when total is 0
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// ValidateBudget rejects negative amounts and amounts finer than MoneyPlaces
func ValidateBudget(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeBudget
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return ErrBudgetPrecision
	}
	return nil
}
