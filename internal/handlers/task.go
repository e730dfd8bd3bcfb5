package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/dto"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/middleware"
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/shopspring/decimal"
)

type TaskHandler struct {
	taskService       *services.TaskService
	transitionService *services.TransitionService
}

func NewTaskHandler(taskService *services.TaskService, transitionService *services.TransitionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		transitionService: transitionService,
	}
}

// GetTask returns a task with its budget summary
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	view, err := h.taskService.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskViewDTO(*view))
}

// CreateTask creates a new task in status new
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID      uint64              `json:"project_id" binding:"required"`
		EpicID         *uint64             `json:"epic_id"`
		SprintID       *uint64             `json:"sprint_id"`
		Title          string              `json:"title" binding:"required"`
		Description    string              `json:"description"`
		KPIs           string              `json:"kpis"`
		StoryPoints    int                 `json:"story_points"`
		Priority       models.TaskPriority `json:"priority"`
		Budget         decimal.Decimal     `json:"budget"`
		ResponsibleIDs []uint64            `json:"responsible_ids"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:      req.ProjectID,
		ActorID:        userID,
		EpicID:         req.EpicID,
		SprintID:       req.SprintID,
		Title:          req.Title,
		Description:    req.Description,
		KPIs:           req.KPIs,
		StoryPoints:    req.StoryPoints,
		Priority:       req.Priority,
		Budget:         req.Budget,
		ResponsibleIDs: req.ResponsibleIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates the descriptive fields of a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		KPIs        *string              `json:"kpis"`
		StoryPoints *int                 `json:"story_points"`
		Priority    *models.TaskPriority `json:"priority"`
		Budget      *decimal.Decimal     `json:"budget"`
		EpicID      *uint64              `json:"epic_id"`
		SprintID    *uint64              `json:"sprint_id"`
		Status      *models.TaskStatus   `json:"status"`
	}

	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Status != nil {
		apierrors.BadRequest(c, "Status cannot be edited directly; use POST /api/tasks/:id/move")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		KPIs:        req.KPIs,
		StoryPoints: req.StoryPoints,
		Priority:    req.Priority,
		Budget:      req.Budget,
		EpicID:      req.EpicID,
		SprintID:    req.SprintID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task with its subtasks and history
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// MoveTask requests a status transition
func (h *TaskHandler) MoveTask(c *gin.Context) {
	type MoveTaskRequest struct {
		Status  models.TaskStatus `json:"status" binding:"required"`
		Comment string            `json:"comment"`
	}

	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	outcome, err := h.transitionService.RequestTransition(c.Request.Context(), services.TransitionRequest{
		TaskID:  taskID,
		Target:  req.Status,
		ActorID: userID,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransitionDTO(*outcome))
}

// ListLogs returns the status history of a task, most recent first
func (h *TaskHandler) ListLogs(c *gin.Context) {
	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	entries, err := h.taskService.ListLogs(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logs := make([]dto.StatusLogDTO, len(entries))
	for i, e := range entries {
		logs[i] = dto.ToStatusLogDTO(e)
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// AssignTask adds responsible users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	h.changeResponsibles(c, h.taskService.AssignResponsibles, "Users assigned successfully")
}

// UnassignTask removes responsible users from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	h.changeResponsibles(c, h.taskService.UnassignResponsibles, "Users unassigned successfully")
}

func (h *TaskHandler) changeResponsibles(
	c *gin.Context,
	apply func(ctx context.Context, input services.AssignUsersInput) error,
	message string,
) {
	type AssignRequest struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}

	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := apply(c.Request.Context(), services.AssignUsersInput{
		TaskID:  taskID,
		ActorID: userID,
		UserIDs: req.UserIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// actorAndID returns the session user and the ID parsed from the named URL parameter.
// It writes the error response itself when either is missing.
func actorAndID(c *gin.Context, param string) (uint64, uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	id, exists := middleware.GetIDParam(c, param)
	if !exists {
		apierrors.BadRequest(c, "Invalid "+param)
		return 0, 0, false
	}

	return userID, id, true
}
