package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"github.com/neusi/task-manager-api/internal/utils"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService delivers lifecycle notifications and serves the per-user inbox.
type NotificationService struct {
	db        *gorm.DB
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	identity  Identity
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(db *gorm.DB, notifRepo repository.NotificationRepository, userRepo repository.UserRepository, identity Identity) *NotificationService {
	return &NotificationService{
		db:        db,
		notifRepo: notifRepo,
		userRepo:  userRepo,
		identity:  identity,
	}
}

// TaskURL is the link stored on task notifications
func TaskURL(taskID uint64) string {
	return fmt.Sprintf("/tasks/%d/", taskID)
}

// NotifyMany writes one notification per distinct recipient other than the actor.
// Nothing is written when no recipient is left.
func (s *NotificationService) NotifyMany(
	ctx context.Context,
	recipients []uint64,
	actorID *uint64,
	verb models.NotificationVerb,
	title, message, url string,
) error {
	seen := make(map[uint64]struct{}, len(recipients))
	batch := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		if actorID != nil && id == *actorID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		batch = append(batch, models.Notification{
			RecipientID: id,
			ActorID:     actorID,
			Verb:        verb,
			Title:       title,
			Message:     message,
			URL:         url,
		})
	}

	if len(batch) == 0 {
		return nil
	}

	if err := s.notifRepo.WithDB(s.db.WithContext(ctx)).CreateBatch(batch); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// NotifyTaskAssigned tells the responsibles of a freshly created task about it.
// task must have Project and Responsibles loaded.
func (s *NotificationService) NotifyTaskAssigned(ctx context.Context, task *models.Task, actorID *uint64) error {
	if task.Status != models.TaskStatusNew || len(task.Responsibles) == 0 {
		return nil
	}

	return s.NotifyMany(
		ctx,
		task.ResponsibleIDs(),
		actorID,
		models.VerbTaskAssigned,
		"You have a new task",
		fmt.Sprintf("Task: %s\nProject: %s", task.Title, task.Project.Name),
		TaskURL(task.ID),
	)
}

// DispatchTransition sends the notifications a committed transition calls for.
// Failures are logged and never returned.
func (s *NotificationService) DispatchTransition(ctx context.Context, outcome TransitionOutcome) {
	if !outcome.Changed {
		return
	}

	if outcome.To == models.TaskStatusCompleted && outcome.From != models.TaskStatusCompleted {
		if err := s.notifyCompleted(ctx, outcome); err != nil {
			log.Printf("task %d: completion notification failed: %v", outcome.TaskID, err)
		}
	}

	if outcome.ActorIsAdmin &&
		outcome.From == models.TaskStatusCompleted &&
		outcome.To == models.TaskStatusInProgress &&
		outcome.Comment != "" {
		if err := s.notifyReturned(ctx, outcome); err != nil {
			log.Printf("task %d: correction notification failed: %v", outcome.TaskID, err)
		}
	}
}

func (s *NotificationService) notifyCompleted(ctx context.Context, outcome TransitionOutcome) error {
	admins, err := s.userRepo.WithDB(s.db.WithContext(ctx)).ListAdminLike(s.identity.AdminGroups())
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	recipients := make([]uint64, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}

	return s.NotifyMany(
		ctx,
		recipients,
		outcome.ActorID,
		models.VerbTaskCompleted,
		"Task completed for review",
		fmt.Sprintf("%s marked the task as COMPLETED: %s\nProject: %s",
			actorName(outcome, "System"), outcome.TaskTitle, outcome.ProjectName),
		TaskURL(outcome.TaskID),
	)
}

func (s *NotificationService) notifyReturned(ctx context.Context, outcome TransitionOutcome) error {
	return s.NotifyMany(
		ctx,
		outcome.ResponsibleIDs,
		outcome.ActorID,
		models.VerbTaskReturned,
		"Correction: your task went back to IN PROGRESS",
		fmt.Sprintf("%s changed the status to IN PROGRESS.\n\nComment:\n%s",
			actorName(outcome, "Admin"), outcome.Comment),
		TaskURL(outcome.TaskID),
	)
}

func actorName(outcome TransitionOutcome, fallback string) string {
	if outcome.ActorID == nil || outcome.ActorName == "" {
		return fallback
	}
	return outcome.ActorName
}

// Inbox is one page of a user's notifications
type Inbox struct {
	Items  []models.Notification
	Total  int64
	Unread int64
}

// ListInbox returns a page of the user's notifications, most recent first
func (s *NotificationService) ListInbox(ctx context.Context, userID uint64, page utils.PaginationParams) (*Inbox, error) {
	repo := s.notifRepo.WithDB(s.db.WithContext(ctx))

	items, total, err := repo.ListByRecipient(userID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := repo.CountUnread(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &Inbox{Items: items, Total: total, Unread: unread}, nil
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	if err := s.notifRepo.WithDB(s.db.WithContext(ctx)).MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.notifRepo.WithDB(s.db.WithContext(ctx)).MarkAllRead(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}
