package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrNotProjectMember     = errors.New("user is not a member of the project")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
	ErrPlanningNameRequired = errors.New("epic and sprint names are required")
)

// ProjectService handles projects and their budget roll-ups
type ProjectService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	audit       *AuditService
	identity    Identity
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	db *gorm.DB,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	audit *AuditService,
	identity Identity,
) *ProjectService {
	return &ProjectService{
		db:          db,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		audit:       audit,
		identity:    identity,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	ActorID     uint64
	Name        string
	Description string
	Budget      decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	MemberIDs   []uint64
}

// ProjectSummary is a project with figures rolled up from its tasks
type ProjectSummary struct {
	Project         *models.Project
	TaskCount       int
	CompletedTasks  int
	Spent           decimal.Decimal
	Remaining       decimal.Decimal
	ProgressPercent float64
}

// CreateEpicInput represents input for creating an epic
type CreateEpicInput struct {
	ProjectID   uint64
	ActorID     uint64
	Name        string
	Description string
}

// CreateSprintInput represents input for creating a sprint
type CreateSprintInput struct {
	ProjectID uint64
	ActorID   uint64
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskCompletion is the date a completed task was finished
type TaskCompletion struct {
	TaskID      uint64
	Title       string
	CompletedAt time.Time
}

// CreateProject creates a project. The creator always becomes a member.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if err := ValidateBudget(input.Budget); err != nil {
		return nil, err
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	actor, err := s.findActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !s.identity.IsAdminLike(actor) {
		return nil, ErrAdminRequired
	}

	memberIDs := uniqueUint64(append([]uint64{actor.ID}, input.MemberIDs...))
	count, err := s.userRepo.WithDB(s.db.WithContext(ctx)).CountByIDs(memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(memberIDs) {
		return nil, ErrInvalidTaskAssignee
	}

	now := time.Now()
	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Budget:      input.Budget,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedByID: &actor.ID,
	}
	for _, id := range memberIDs {
		project.Members = append(project.Members, models.ProjectMember{UserID: id, JoinedAt: now})
	}

	if err := s.projectRepo.WithDB(s.db.WithContext(ctx)).Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProjectSummary returns a project with remaining budget and task progress.
// Admins and project members may read it.
func (s *ProjectService) GetProjectSummary(ctx context.Context, projectID, actorID uint64) (*ProjectSummary, error) {
	project, err := s.findAccessibleProject(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.WithDB(s.db.WithContext(ctx)).ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	spent := decimal.Zero
	completed := 0
	for _, t := range tasks {
		spent = spent.Add(t.SpentBudget)
		if t.Status == models.TaskStatusCompleted {
			completed++
		}
	}

	return &ProjectSummary{
		Project:         project,
		TaskCount:       len(tasks),
		CompletedTasks:  completed,
		Spent:           spent,
		Remaining:       project.Budget.Sub(spent),
		ProgressPercent: percent(int64(completed), int64(len(tasks))),
	}, nil
}

// CompletionTimeline lists the completed tasks of a project with the date each was finished,
// oldest first. A completed task without a log entry falls back to its creation date.
func (s *ProjectService) CompletionTimeline(ctx context.Context, projectID, actorID uint64) ([]TaskCompletion, error) {
	if _, err := s.findAccessibleProject(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.WithDB(s.db.WithContext(ctx)).ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var ids []uint64
	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return []TaskCompletion{}, nil
	}

	dates, err := s.audit.CompletionDates(ctx, ids)
	if err != nil {
		return nil, err
	}

	timeline := make([]TaskCompletion, 0, len(ids))
	for _, t := range tasks {
		if t.Status != models.TaskStatusCompleted {
			continue
		}
		at, ok := dates[t.ID]
		if !ok {
			at = t.CreatedAt
		}
		timeline = append(timeline, TaskCompletion{TaskID: t.ID, Title: t.Title, CompletedAt: at})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].CompletedAt.Before(timeline[j].CompletedAt)
	})

	return timeline, nil
}

// CreateEpic adds an epic to a project. Admins only.
func (s *ProjectService) CreateEpic(ctx context.Context, input CreateEpicInput) (*models.Epic, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlanningNameRequired
	}

	actor, err := s.findAdminProject(ctx, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}

	epic := &models.Epic{
		ProjectID:   input.ProjectID,
		Name:        name,
		Description: input.Description,
		CreatedByID: &actor.ID,
	}
	if err := s.projectRepo.WithDB(s.db.WithContext(ctx)).CreateEpic(epic); err != nil {
		return nil, fmt.Errorf("failed to create epic: %w", err)
	}
	return epic, nil
}

// CreateSprint adds a sprint to a project. Admins only.
func (s *ProjectService) CreateSprint(ctx context.Context, input CreateSprintInput) (*models.Sprint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlanningNameRequired
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	actor, err := s.findAdminProject(ctx, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}

	sprint := &models.Sprint{
		ProjectID:   input.ProjectID,
		Name:        name,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedByID: &actor.ID,
	}
	if err := s.projectRepo.WithDB(s.db.WithContext(ctx)).CreateSprint(sprint); err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}
	return sprint, nil
}

// ListEpics lists a project's epics for admins and members
func (s *ProjectService) ListEpics(ctx context.Context, projectID, actorID uint64) ([]models.Epic, error) {
	if _, err := s.findAccessibleProject(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	epics, err := s.projectRepo.WithDB(s.db.WithContext(ctx)).ListEpics(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list epics: %w", err)
	}
	return epics, nil
}

// ListSprints lists a project's sprints for admins and members
func (s *ProjectService) ListSprints(ctx context.Context, projectID, actorID uint64) ([]models.Sprint, error) {
	if _, err := s.findAccessibleProject(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	sprints, err := s.projectRepo.WithDB(s.db.WithContext(ctx)).ListSprints(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	return sprints, nil
}

// findAdminProject returns the actor when it is admin-like and the project exists
func (s *ProjectService) findAdminProject(ctx context.Context, projectID, actorID uint64) (*models.User, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.identity.IsAdminLike(actor) {
		return nil, ErrAdminRequired
	}

	if _, err := s.projectRepo.WithDB(s.db.WithContext(ctx)).FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return actor, nil
}

func (s *ProjectService) findAccessibleProject(ctx context.Context, projectID, actorID uint64) (*models.Project, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.WithDB(s.db.WithContext(ctx)).FindByID(projectID, "Members")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if s.identity.IsAdminLike(actor) {
		return project, nil
	}
	for _, m := range project.Members {
		if m.UserID == actor.ID {
			return project, nil
		}
	}
	return nil, ErrNotProjectMember
}

func (s *ProjectService) findActor(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.WithDB(s.db.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
