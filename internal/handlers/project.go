package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/dto"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/middleware"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/shopspring/decimal"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name        string          `json:"name" binding:"required,max=200"`
		Description string          `json:"description"`
		Budget      decimal.Decimal `json:"budget"`
		StartDate   *time.Time      `json:"start_date"`
		EndDate     *time.Time      `json:"end_date"`
		MemberIDs   []uint64        `json:"member_ids"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns a project with its remaining budget and progress
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	summary, err := h.projectService.GetProjectSummary(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectSummaryDTO(*summary))
}

// GetCompletions returns when each completed task of a project was finished
func (h *ProjectHandler) GetCompletions(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	timeline, err := h.projectService.CompletionTimeline(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"completions": dto.ToTaskCompletionDTOs(timeline)})
}

// CreateEpic adds an epic to a project
func (h *ProjectHandler) CreateEpic(c *gin.Context) {
	type CreateEpicRequest struct {
		Name        string `json:"name" binding:"required,max=200"`
		Description string `json:"description"`
	}

	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req CreateEpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	epic, err := h.projectService.CreateEpic(c.Request.Context(), services.CreateEpicInput{
		ProjectID:   projectID,
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEpicDTO(*epic))
}

// CreateSprint adds a sprint to a project
func (h *ProjectHandler) CreateSprint(c *gin.Context) {
	type CreateSprintRequest struct {
		Name      string     `json:"name" binding:"required,max=100"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}

	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sprint, err := h.projectService.CreateSprint(c.Request.Context(), services.CreateSprintInput{
		ProjectID: projectID,
		ActorID:   userID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSprintDTO(*sprint))
}

// ListEpics returns the epics of a project
func (h *ProjectHandler) ListEpics(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	epics, err := h.projectService.ListEpics(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.EpicDTO, len(epics))
	for i, e := range epics {
		items[i] = dto.ToEpicDTO(e)
	}
	c.JSON(http.StatusOK, gin.H{"epics": items})
}

// ListSprints returns the sprints of a project
func (h *ProjectHandler) ListSprints(c *gin.Context) {
	userID, projectID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	sprints, err := h.projectService.ListSprints(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.SprintDTO, len(sprints))
	for i, sp := range sprints {
		items[i] = dto.ToSprintDTO(sp)
	}
	c.JSON(http.StatusOK, gin.H{"sprints": items})
}
