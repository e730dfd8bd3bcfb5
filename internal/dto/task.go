package dto

import (
	"time"

	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/shopspring/decimal"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

// CurrentUserDTO is the authenticated user with their role
type CurrentUserDTO struct {
	UserDTO
	IsAdmin bool     `json:"is_admin"`
	Groups  []string `json:"groups"`
}

// SubTaskDTO represents a subtask in API responses
type SubTaskDTO struct {
	ID          uint64            `json:"id"`
	TaskID      uint64            `json:"task_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StoryPoints int               `json:"story_points"`
	Budget      string            `json:"budget"`
	Status      models.TaskStatus `json:"status"`
	CreatedByID *uint64           `json:"created_by_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              uint64              `json:"id"`
	ProjectID       uint64              `json:"project_id"`
	ProjectName     string              `json:"project_name,omitempty"`
	EpicID          *uint64             `json:"epic_id"`
	SprintID        *uint64             `json:"sprint_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	KPIs            string              `json:"kpis"`
	StoryPoints     int                 `json:"story_points"`
	Priority        models.TaskPriority `json:"priority"`
	Status          models.TaskStatus   `json:"status"`
	Budget          string              `json:"budget"`
	SpentBudget     string              `json:"spent_budget"`
	RemainingBudget string              `json:"remaining_budget"`
	CreatedByID     *uint64             `json:"created_by_id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	CreatedBy       *UserDTO            `json:"created_by,omitempty"`
	Responsibles    []UserDTO           `json:"responsibles"`
	SubTasks        []SubTaskDTO        `json:"subtasks,omitempty"`

	// Only set when the budget summary was computed
	ProgressPercent   *float64 `json:"progress_percent,omitempty"`
	SubtasksTotal     *int64   `json:"subtasks_total,omitempty"`
	SubtasksCompleted *int64   `json:"subtasks_completed,omitempty"`
}

// StatusLogDTO represents one entry of a task's status history
type StatusLogDTO struct {
	ID         uint64            `json:"id"`
	TaskID     uint64            `json:"task_id"`
	FromStatus models.TaskStatus `json:"from_status"`
	ToStatus   models.TaskStatus `json:"to_status"`
	Comment    string            `json:"comment"`
	CreatedBy  *UserDTO          `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TransitionDTO is the result of a move request
type TransitionDTO struct {
	TaskID  uint64            `json:"task_id"`
	From    models.TaskStatus `json:"from"`
	To      models.TaskStatus `json:"to"`
	Changed bool              `json:"changed"`
	Comment string            `json:"comment,omitempty"`
	LogID   *uint64           `json:"log_id,omitempty"`
}

// Money formats a currency amount with two decimals
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	}
}

// ToCurrentUserDTO converts the authenticated user to CurrentUserDTO
func ToCurrentUserDTO(user models.User, isAdmin bool) CurrentUserDTO {
	groups := make([]string, 0, len(user.Groups))
	for _, g := range user.Groups {
		groups = append(groups, g.Name)
	}
	return CurrentUserDTO{
		UserDTO: ToUserDTO(user),
		IsAdmin: isAdmin,
		Groups:  groups,
	}
}

// ToSubTaskDTO converts a SubTask model to SubTaskDTO
func ToSubTaskDTO(subtask models.SubTask) SubTaskDTO {
	return SubTaskDTO{
		ID:          subtask.ID,
		TaskID:      subtask.TaskID,
		Title:       subtask.Title,
		Description: subtask.Description,
		StoryPoints: subtask.StoryPoints,
		Budget:      Money(subtask.Budget),
		Status:      subtask.Status,
		CreatedByID: subtask.CreatedByID,
		CreatedAt:   subtask.CreatedAt,
		UpdatedAt:   subtask.UpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		ProjectName:     task.Project.Name,
		EpicID:          task.EpicID,
		SprintID:        task.SprintID,
		Title:           task.Title,
		Description:     task.Description,
		KPIs:            task.KPIs,
		StoryPoints:     task.StoryPoints,
		Priority:        task.Priority,
		Status:          task.Status,
		Budget:          Money(task.Budget),
		SpentBudget:     Money(task.SpentBudget),
		RemainingBudget: Money(task.RemainingBudget()),
		CreatedByID:     task.CreatedByID,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
		Responsibles:    make([]UserDTO, 0, len(task.Responsibles)),
	}

	// Include creator if preloaded
	if task.CreatedBy != nil {
		creator := ToUserDTO(*task.CreatedBy)
		dto.CreatedBy = &creator
	}

	for _, r := range task.Responsibles {
		if r.User.ID == 0 {
			dto.Responsibles = append(dto.Responsibles, UserDTO{ID: r.UserID})
			continue
		}
		dto.Responsibles = append(dto.Responsibles, ToUserDTO(r.User))
	}

	if len(task.SubTasks) > 0 {
		dto.SubTasks = make([]SubTaskDTO, len(task.SubTasks))
		for i, s := range task.SubTasks {
			dto.SubTasks[i] = ToSubTaskDTO(s)
		}
	}

	return dto
}

// ToTaskViewDTO converts a task with its budget summary
func ToTaskViewDTO(view services.TaskView) TaskDTO {
	dto := ToTaskDTO(*view.Task)
	if view.Budget != nil {
		dto.RemainingBudget = Money(view.Budget.Remaining)
		dto.ProgressPercent = &view.Budget.ProgressPercent
		dto.SubtasksTotal = &view.Budget.SubtasksTotal
		dto.SubtasksCompleted = &view.Budget.SubtasksCompleted
	}
	return dto
}

// ToStatusLogDTO converts a TaskStatusLog model to StatusLogDTO
func ToStatusLogDTO(entry models.TaskStatusLog) StatusLogDTO {
	dto := StatusLogDTO{
		ID:         entry.ID,
		TaskID:     entry.TaskID,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Comment:    entry.Comment,
		CreatedAt:  entry.CreatedAt,
	}
	if entry.CreatedBy != nil {
		user := ToUserDTO(*entry.CreatedBy)
		dto.CreatedBy = &user
	}
	return dto
}

// ToTransitionDTO converts a transition outcome to TransitionDTO
func ToTransitionDTO(outcome services.TransitionOutcome) TransitionDTO {
	dto := TransitionDTO{
		TaskID:  outcome.TaskID,
		From:    outcome.From,
		To:      outcome.To,
		Changed: outcome.Changed,
		Comment: outcome.Comment,
	}
	if outcome.Changed {
		id := outcome.LogEntryID
		dto.LogID = &id
	}
	return dto
}
