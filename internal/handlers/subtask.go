package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/dto"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/shopspring/decimal"
)

type SubTaskHandler struct {
	subtaskService *services.SubTaskService
}

func NewSubTaskHandler(subtaskService *services.SubTaskService) *SubTaskHandler {
	return &SubTaskHandler{
		subtaskService: subtaskService,
	}
}

// CreateSubTask adds a subtask to the task in the URL
func (h *SubTaskHandler) CreateSubTask(c *gin.Context) {
	type CreateSubTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		StoryPoints int               `json:"story_points"`
		Budget      decimal.Decimal   `json:"budget"`
		Status      models.TaskStatus `json:"status"`
	}

	userID, taskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req CreateSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.subtaskService.Create(c.Request.Context(), services.CreateSubTaskInput{
		TaskID:      taskID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		StoryPoints: req.StoryPoints,
		Budget:      req.Budget,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubTaskDTO(*subtask))
}

// UpdateSubTask edits a subtask, including its status
func (h *SubTaskHandler) UpdateSubTask(c *gin.Context) {
	type UpdateSubTaskRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		StoryPoints *int               `json:"story_points"`
		Budget      *decimal.Decimal   `json:"budget"`
		Status      *models.TaskStatus `json:"status"`
	}

	userID, subtaskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req UpdateSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.subtaskService.Update(c.Request.Context(), subtaskID, userID, services.UpdateSubTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StoryPoints: req.StoryPoints,
		Budget:      req.Budget,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubTaskDTO(*subtask))
}

// DeleteSubTask removes a subtask
func (h *SubTaskHandler) DeleteSubTask(c *gin.Context) {
	userID, subtaskID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	if err := h.subtaskService.Delete(c.Request.Context(), subtaskID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}
