package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized      = errors.New("user may not change the status of this task")
	ErrIllegalTransition = errors.New("status transition not allowed")
	ErrCommentRequired   = errors.New("a comment is required to move a task back")
	ErrInvalidStatus     = errors.New("invalid task status")
)

// TransitionError is a rejected transition. It wraps one of ErrUnauthorized,
// ErrIllegalTransition or ErrCommentRequired and carries the reason shown to the user.
type TransitionError struct {
	Err    error
	From   models.TaskStatus
	To     models.TaskStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// forwardMoves are the only moves available to responsible users.
var forwardMoves = map[models.TaskStatus]models.TaskStatus{
	models.TaskStatusNew:        models.TaskStatusInProgress,
	models.TaskStatusInProgress: models.TaskStatusCompleted,
}

// IsBackward reports whether moving from -> to decreases progress.
func IsBackward(from, to models.TaskStatus) bool {
	return to.Before(from)
}

// ValidateTransition checks a change of status for an already authorized actor.
// Same-status requests are accepted by the caller before reaching this check.
func ValidateTransition(from, to models.TaskStatus, adminLike bool, comment string) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	if !adminLike {
		next, ok := forwardMoves[from]
		if ok && next == to {
			return nil
		}
		reason := fmt.Sprintf("cannot move task from %s to %s: only admins can reopen a completed task", from, to)
		if ok {
			reason = fmt.Sprintf("cannot move task from %s to %s: you can only advance it to %s", from, to, next)
		}
		return &TransitionError{Err: ErrIllegalTransition, From: from, To: to, Reason: reason}
	}

	if !from.Valid() && from != to {
		// Stored statuses outside the known domain can always be corrected by an admin
		return nil
	}

	if IsBackward(from, to) && strings.TrimSpace(comment) == "" {
		return &TransitionError{
			Err:    ErrCommentRequired,
			From:   from,
			To:     to,
			Reason: fmt.Sprintf("moving a task back from %s to %s requires a comment explaining why", from, to),
		}
	}

	return nil
}

// TransitionRequest asks to move a task to Target on behalf of ActorID
type TransitionRequest struct {
	TaskID  uint64
	Target  models.TaskStatus
	ActorID uint64
	Comment string
}

// TransitionOutcome is the committed result of a transition. It carries a snapshot of
// the task so notifications never depend on re-reading it.
type TransitionOutcome struct {
	TaskID         uint64
	From           models.TaskStatus
	To             models.TaskStatus
	Changed        bool
	ActorID        *uint64
	ActorName      string
	ActorIsAdmin   bool
	Comment        string
	LogEntryID     uint64
	TaskTitle      string
	ProjectName    string
	ResponsibleIDs []uint64
}

// TransitionService is the only writer of Task.Status
type TransitionService struct {
	db         *gorm.DB
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	audit      *AuditService
	dispatcher *NotificationService
	identity   Identity
	locks      *TaskLocks
}

// NewTransitionService creates a new TransitionService. dispatcher may be nil.
func NewTransitionService(
	db *gorm.DB,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	audit *AuditService,
	dispatcher *NotificationService,
	identity Identity,
	locks *TaskLocks,
) *TransitionService {
	return &TransitionService{
		db:         db,
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		audit:      audit,
		dispatcher: dispatcher,
		identity:   identity,
		locks:      locks,
	}
}

// RequestTransition validates and applies a status change, then dispatches notifications
// for it. Notification failures never turn into an error here.
func (s *TransitionService) RequestTransition(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	outcome, err := s.apply(ctx, req)
	if err != nil {
		return nil, err
	}

	if outcome.Changed && s.dispatcher != nil {
		s.dispatcher.DispatchTransition(ctx, *outcome)
	}

	return outcome, nil
}

// apply runs read, validate, write and append under the task lock and one transaction
func (s *TransitionService) apply(ctx context.Context, req TransitionRequest) (*TransitionOutcome, error) {
	if !req.Target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Target)
	}

	actor, err := s.userRepo.WithDB(s.db.WithContext(ctx)).FindByID(req.ActorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	adminLike := s.identity.IsAdminLike(actor)

	unlock := s.locks.Lock(req.TaskID)
	defer unlock()

	var outcome *TransitionOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.taskRepo.WithDB(tx).FindByIDForUpdate(req.TaskID, "Project", "Responsibles")
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if !adminLike && !s.identity.IsResponsibleFor(actor, task) {
			return &TransitionError{
				Err:    ErrUnauthorized,
				From:   task.Status,
				To:     req.Target,
				Reason: "only admins or users responsible for this task can change its status",
			}
		}

		outcome = &TransitionOutcome{
			TaskID:         task.ID,
			From:           task.Status,
			To:             req.Target,
			ActorID:        &actor.ID,
			ActorName:      actor.DisplayName(),
			ActorIsAdmin:   adminLike,
			TaskTitle:      task.Title,
			ProjectName:    task.Project.Name,
			ResponsibleIDs: task.ResponsibleIDs(),
		}

		if task.Status == req.Target {
			return nil
		}

		comment := strings.TrimSpace(req.Comment)
		if err := ValidateTransition(task.Status, req.Target, adminLike, comment); err != nil {
			return err
		}
		if !adminLike {
			comment = ""
		}

		if err := s.taskRepo.WithDB(tx).UpdateStatus(task.ID, req.Target); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		entry, err := s.audit.Append(tx, AuditEntry{
			TaskID:  task.ID,
			From:    task.Status,
			To:      req.Target,
			Comment: comment,
			ActorID: &actor.ID,
		})
		if err != nil {
			return err
		}

		outcome.Changed = true
		outcome.Comment = comment
		outcome.LogEntryID = entry.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}
