package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/constants"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
	"github.com/neusi/task-manager-api/internal/services"
)

// respondError maps a service error to its HTTP response
func respondError(c *gin.Context, err error) {
	var transitionErr *services.TransitionError
	if errors.As(err, &transitionErr) {
		details := gin.H{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		}
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			apierrors.ForbiddenWithDetails(c, transitionErr.Reason, details)
		case errors.Is(err, services.ErrCommentRequired):
			apierrors.CommentRequired(c, transitionErr.Reason, details)
		default:
			apierrors.IllegalTransition(c, transitionErr.Reason, details)
		}
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.InvalidStatus(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrNegativeBudget),
		errors.Is(err, services.ErrBudgetPrecision),
		errors.Is(err, services.ErrInvalidEpic),
		errors.Is(err, services.ErrInvalidSprint),
		errors.Is(err, services.ErrPlanningNameRequired),
		errors.Is(err, services.ErrCannotDeactivateSelf),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoUserIDsProvided),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrUsernameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrAdminRequired),
		errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSubTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		apierrors.InternalError(c, "")
	}
}
