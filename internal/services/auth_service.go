package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neusi/task-manager-api/internal/constants"
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrCannotDeactivateSelf = errors.New("users cannot deactivate themselves")
)

// AuthService handles authentication and user administration.
type AuthService struct {
	userRepo repository.UserRepository
	identity Identity
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, identity Identity) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		identity: identity,
	}
}

// CreateUserInput represents the information needed to create a user.
type CreateUserInput struct {
	ActorID  uint64
	Username string
	Password string
	FullName string
	IsStaff  bool
	Groups   []string
}

// CreateUser creates a user on behalf of an admin-like actor.
func (s *AuthService) CreateUser(input CreateUserInput) (*models.User, error) {
	actor, err := s.GetUser(input.ActorID)
	if err != nil {
		return nil, err
	}
	if !s.identity.IsAdminLike(actor) {
		return nil, ErrAdminRequired
	}

	return s.Register(input)
}

// Register creates a user without an actor check. It is used for seeding the first admin.
func (s *AuthService) Register(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	var groupNames []string
	for _, name := range input.Groups {
		if name = strings.TrimSpace(name); name != "" {
			groupNames = append(groupNames, name)
		}
	}
	groups, err := s.userRepo.FindOrCreateGroups(groupNames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve groups: %w", err)
	}

	user := &models.User{
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: string(hashedPassword),
		IsStaff:      input.IsStaff,
		Groups:       groups,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// DeactivateUser soft-deletes a user on behalf of an admin-like actor. The user can no longer
// log in or act; logs and notifications they authored stay and show no actor.
func (s *AuthService) DeactivateUser(actorID, userID uint64) error {
	actor, err := s.GetUser(actorID)
	if err != nil {
		return err
	}
	if !s.identity.IsAdminLike(actor) {
		return ErrAdminRequired
	}
	if actor.ID == userID {
		return ErrCannotDeactivateSelf
	}

	if err := s.userRepo.Deactivate(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// IsAdmin reports whether the user is admin-like.
func (s *AuthService) IsAdmin(user *models.User) bool {
	return s.identity.IsAdminLike(user)
}
