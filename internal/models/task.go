package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// rank orders statuses by progress; unknown statuses rank below New.
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusNew:
		return 0
	case TaskStatusInProgress:
		return 1
	case TaskStatusCompleted:
		return 2
	default:
		return -1
	}
}

// Before reports whether s is an earlier stage than other.
func (s TaskStatus) Before(other TaskStatus) bool {
	return s.rank() < other.rank()
}

type TaskPriority string

const (
	TaskPriorityDo        TaskPriority = "do"
	TaskPriorityPlan      TaskPriority = "plan"
	TaskPriorityDelegate  TaskPriority = "delegate"
	TaskPriorityEliminate TaskPriority = "eliminate"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityDo, TaskPriorityPlan, TaskPriorityDelegate, TaskPriorityEliminate:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	ProjectID   uint64          `gorm:"not null;index" json:"project_id"`
	EpicID      *uint64         `gorm:"index" json:"epic_id"`
	SprintID    *uint64         `gorm:"index" json:"sprint_id"`
	Title       string          `gorm:"type:varchar(200);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	KPIs        string          `gorm:"column:kpis;type:text" json:"kpis"`
	StoryPoints int             `gorm:"not null" json:"story_points"`
	Priority    TaskPriority    `gorm:"type:varchar(15);not null" json:"priority"`
	Status      TaskStatus      `gorm:"type:varchar(15);not null;index" json:"status"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"budget"`
	SpentBudget decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"spent_budget"`
	CreatedByID *uint64         `json:"created_by_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Project      Project           `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy    *User             `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Responsibles []TaskResponsible `gorm:"foreignKey:TaskID" json:"responsibles,omitempty"`
	SubTasks     []SubTask         `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
}

// RemainingBudget is Budget minus SpentBudget. It goes negative on overspend.
func (t *Task) RemainingBudget() decimal.Decimal {
	return t.Budget.Sub(t.SpentBudget)
}

// ResponsibleIDs returns the IDs of the preloaded responsible users.
func (t *Task) ResponsibleIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Responsibles))
	for _, r := range t.Responsibles {
		ids = append(ids, r.UserID)
	}
	return ids
}

// HasResponsible reports whether userID is among the preloaded responsibles.
func (t *Task) HasResponsible(userID uint64) bool {
	for _, r := range t.Responsibles {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
