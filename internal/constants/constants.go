package constants

// Session and context keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	SessionCookieName = "task_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Auth
const (
	MinPasswordLength = 8
)

// DefaultAdminGroups are the group names that make a user admin-like.
var DefaultAdminGroups = []string{"admin", "leader", "scrum"}
