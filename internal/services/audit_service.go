package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

// AuditEntry is one transition to record. A nil ActorID marks a system-issued transition.
type AuditEntry struct {
	TaskID  uint64
	From    models.TaskStatus
	To      models.TaskStatus
	Comment string
	ActorID *uint64
}

// AuditService keeps the append-only transition log of each task.
type AuditService struct {
	db       *gorm.DB
	logRepo  repository.StatusLogRepository
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewAuditService creates a new AuditService
func NewAuditService(db *gorm.DB, logRepo repository.StatusLogRepository, taskRepo repository.TaskRepository) *AuditService {
	return &AuditService{
		db:       db,
		logRepo:  logRepo,
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// Append records entry through tx. Statuses are stored verbatim.
func (s *AuditService) Append(tx *gorm.DB, entry AuditEntry) (*models.TaskStatusLog, error) {
	if _, err := s.taskRepo.WithDB(tx).FindByID(entry.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	record := &models.TaskStatusLog{
		TaskID:      entry.TaskID,
		FromStatus:  entry.From,
		ToStatus:    entry.To,
		Comment:     entry.Comment,
		CreatedByID: entry.ActorID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.logRepo.WithDB(tx).Create(record); err != nil {
		return nil, fmt.Errorf("failed to append status log: %w", err)
	}

	return record, nil
}

// ListForTask returns the log of a task, most recent first
func (s *AuditService) ListForTask(ctx context.Context, taskID uint64) ([]models.TaskStatusLog, error) {
	entries, err := s.logRepo.WithDB(s.db.WithContext(ctx)).ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status logs: %w", err)
	}
	return entries, nil
}

// CompletionDates maps each task to the time of its latest move into completed.
// Tasks that never reached completed are absent from the map.
func (s *AuditService) CompletionDates(ctx context.Context, taskIDs []uint64) (map[uint64]time.Time, error) {
	entries, err := s.logRepo.WithDB(s.db.WithContext(ctx)).ListByTasksAndTarget(taskIDs, models.TaskStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	dates := make(map[uint64]time.Time, len(entries))
	// Oldest first, so the latest entry wins
	for _, e := range entries {
		dates[e.TaskID] = e.CreatedAt
	}
	return dates, nil
}
