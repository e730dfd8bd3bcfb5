package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/neusi/task-manager-api/internal/config"
	"github.com/neusi/task-manager-api/internal/constants"
	"github.com/neusi/task-manager-api/internal/database"
	"github.com/neusi/task-manager-api/internal/handlers"
	"github.com/neusi/task-manager-api/internal/services"
	"github.com/neusi/task-manager-api/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	svc := services.New(database.GetDB(), cfg.AdminGroups)
	bootstrapAdmin(cfg, svc.Auth)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Secure cookies only behind HTTPS in release mode
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, svc)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// bootstrapAdmin creates the first admin account so that users can be created through the API.
// Without a configured password a temporary one is generated and logged once.
func bootstrapAdmin(cfg *config.Config, auth *services.AuthService) {
	if cfg.BootstrapAdminUsername == "" {
		return
	}
	if len(cfg.AdminGroups) == 0 {
		log.Printf("Skipping admin bootstrap: ADMIN_GROUPS is empty")
		return
	}

	password := cfg.BootstrapAdminPassword
	generated := password == ""
	if generated {
		var err error
		if password, err = utils.GenerateTemporaryPassword(); err != nil {
			log.Fatalf("Failed to generate admin password: %v", err)
		}
	}

	_, err := auth.Register(services.CreateUserInput{
		Username: cfg.BootstrapAdminUsername,
		Password: password,
		Groups:   []string{cfg.AdminGroups[0]},
	})
	switch {
	case err == nil && generated:
		log.Printf("Created admin user %q with temporary password %s", cfg.BootstrapAdminUsername, password)
	case err == nil:
		log.Printf("Created admin user %q", cfg.BootstrapAdminUsername)
	case errors.Is(err, services.ErrUsernameTaken):
	default:
		log.Fatalf("Failed to create admin user: %v", err)
	}
}
