package dto

import (
	"time"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Budget      string     `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedByID *uint64    `json:"created_by_id"`
	MemberIDs   []uint64   `json:"member_ids"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProjectSummaryDTO is a project with figures rolled up from its tasks
type ProjectSummaryDTO struct {
	ProjectDTO
	SpentBudget     string  `json:"spent_budget"`
	RemainingBudget string  `json:"remaining_budget"`
	TaskCount       int     `json:"task_count"`
	CompletedTasks  int     `json:"completed_tasks"`
	ProgressPercent float64 `json:"progress_percent"`
}

// TaskCompletionDTO is one completed task in a project timeline
type TaskCompletionDTO struct {
	TaskID      uint64    `json:"task_id"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completed_at"`
}

// EpicDTO represents an epic in API responses
type EpicDTO struct {
	ID          uint64    `json:"id"`
	ProjectID   uint64    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SprintDTO represents a sprint in API responses
type SprintDTO struct {
	ID        uint64     `json:"id"`
	ProjectID uint64     `json:"project_id"`
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	memberIDs := make([]uint64, 0, len(project.Members))
	for _, m := range project.Members {
		memberIDs = append(memberIDs, m.UserID)
	}

	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Budget:      Money(project.Budget),
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		CreatedByID: project.CreatedByID,
		MemberIDs:   memberIDs,
		CreatedAt:   project.CreatedAt,
	}
}

// ToProjectSummaryDTO converts a ProjectSummary to ProjectSummaryDTO
func ToProjectSummaryDTO(summary services.ProjectSummary) ProjectSummaryDTO {
	return ProjectSummaryDTO{
		ProjectDTO:      ToProjectDTO(*summary.Project),
		SpentBudget:     Money(summary.Spent),
		RemainingBudget: Money(summary.Remaining),
		TaskCount:       summary.TaskCount,
		CompletedTasks:  summary.CompletedTasks,
		ProgressPercent: summary.ProgressPercent,
	}
}

// ToTaskCompletionDTOs converts a completion timeline
func ToTaskCompletionDTOs(timeline []services.TaskCompletion) []TaskCompletionDTO {
	items := make([]TaskCompletionDTO, len(timeline))
	for i, t := range timeline {
		items[i] = TaskCompletionDTO{TaskID: t.TaskID, Title: t.Title, CompletedAt: t.CompletedAt}
	}
	return items
}

// ToEpicDTO converts an Epic model to EpicDTO
func ToEpicDTO(epic models.Epic) EpicDTO {
	return EpicDTO{
		ID:          epic.ID,
		ProjectID:   epic.ProjectID,
		Name:        epic.Name,
		Description: epic.Description,
		CreatedAt:   epic.CreatedAt,
	}
}

// ToSprintDTO converts a Sprint model to SprintDTO
func ToSprintDTO(sprint models.Sprint) SprintDTO {
	return SprintDTO{
		ID:        sprint.ID,
		ProjectID: sprint.ProjectID,
		Name:      sprint.Name,
		StartDate: sprint.StartDate,
		EndDate:   sprint.EndDate,
		CreatedAt: sprint.CreatedAt,
	}
}
