package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/dto"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/middleware"
	"github.com/neusi/task-manager-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := middleware.StartSession(c, user.ID); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrentUserDTO(*user, h.authService.IsAdmin(user)))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.EndSession(c); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrentUserDTO(*user, h.authService.IsAdmin(user)))
}

// CreateUser lets an admin add a user account.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username string   `json:"username" binding:"required,min=3,max=150"`
		Password string   `json:"password" binding:"required"`
		FullName string   `json:"full_name"`
		IsStaff  bool     `json:"is_staff"`
		Groups   []string `json:"groups"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.CreateUser(services.CreateUserInput{
		ActorID:  userID,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		IsStaff:  req.IsStaff,
		Groups:   req.Groups,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCurrentUserDTO(*user, h.authService.IsAdmin(user)))
}

// DeactivateUser lets an admin disable another user's account.
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	userID, targetID, ok := actorAndID(c, "id")
	if !ok {
		return
	}

	if err := h.authService.DeactivateUser(userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}
