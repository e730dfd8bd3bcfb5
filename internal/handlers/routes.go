package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/middleware"
	"github.com/neusi/task-manager-api/internal/services"
)

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, svc *services.Services) {
	authHandler := NewAuthHandler(svc.Auth)
	projectHandler := NewProjectHandler(svc.Projects)
	taskHandler := NewTaskHandler(svc.Tasks, svc.Transitions)
	subtaskHandler := NewSubTaskHandler(svc.SubTasks)
	notificationHandler := NewNotificationHandler(svc.Notifications)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Manager API is running",
		})
	})

	id := middleware.RequireIDParam("id")

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User administration (admin only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAdmin(svc.Identity))
		{
			users.POST("", authHandler.CreateUser)
			users.DELETE("/:id", id, authHandler.DeactivateUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", middleware.RequireAdmin(svc.Identity), projectHandler.CreateProject)
			projects.GET("/:id", id, projectHandler.GetProject)
			projects.GET("/:id/completions", id, projectHandler.GetCompletions)
			projects.GET("/:id/epics", id, projectHandler.ListEpics)
			projects.POST("/:id/epics", id, middleware.RequireAdmin(svc.Identity), projectHandler.CreateEpic)
			projects.GET("/:id/sprints", id, projectHandler.ListSprints)
			projects.POST("/:id/sprints", id, middleware.RequireAdmin(svc.Identity), projectHandler.CreateSprint)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", id, taskHandler.GetTask)
			tasks.PATCH("/:id", id, taskHandler.UpdateTask)
			tasks.DELETE("/:id", id, taskHandler.DeleteTask)
			tasks.POST("/:id/move", id, taskHandler.MoveTask)
			tasks.GET("/:id/logs", id, taskHandler.ListLogs)
			tasks.POST("/:id/assign", id, taskHandler.AssignTask)
			tasks.POST("/:id/unassign", id, taskHandler.UnassignTask)
			tasks.POST("/:id/subtasks", id, subtaskHandler.CreateSubTask)
		}

		// Subtask routes (protected)
		subtasks := api.Group("/subtasks")
		subtasks.Use(middleware.RequireAuth())
		{
			subtasks.PATCH("/:id", id, subtaskHandler.UpdateSubTask)
			subtasks.DELETE("/:id", id, subtaskHandler.DeleteSubTask)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", id, notificationHandler.MarkRead)
		}
	}
}
