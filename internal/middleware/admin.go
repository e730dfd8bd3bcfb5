package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/constants"
	"github.com/neusi/task-manager-api/internal/database"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/services"
)

// RequireAdmin lets only admin-like users through. Must run after RequireAuth.
func RequireAdmin(identity services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().Preload("Groups").First(&user, userID).Error; err != nil {
			// The session outlived its user
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !identity.IsAdminLike(&user) {
			apierrors.Forbidden(c, "Only admins can perform this action")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}
