package services

import (
	"github.com/neusi/task-manager-api/internal/models"
)

// Identity answers the role questions the lifecycle rules depend on.
type Identity interface {
	// IsAdminLike reports whether the user has broad transition rights.
	IsAdminLike(user *models.User) bool

	// IsResponsibleFor reports whether the user is assigned to the task.
	IsResponsibleFor(user *models.User, task *models.Task) bool

	// AdminGroups returns the elevated group names.
	AdminGroups() []string
}

// GroupIdentity derives roles from superuser/staff flags and group membership.
// Users must have Groups preloaded and tasks must have Responsibles preloaded.
type GroupIdentity struct {
	groups []string
	set    map[string]struct{}
}

// NewGroupIdentity creates a GroupIdentity treating members of adminGroups as admin-like.
func NewGroupIdentity(adminGroups []string) *GroupIdentity {
	set := make(map[string]struct{}, len(adminGroups))
	groups := make([]string, 0, len(adminGroups))
	for _, name := range adminGroups {
		if _, dup := set[name]; dup {
			continue
		}
		set[name] = struct{}{}
		groups = append(groups, name)
	}
	return &GroupIdentity{groups: groups, set: set}
}

func (g *GroupIdentity) IsAdminLike(user *models.User) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser || user.IsStaff {
		return true
	}
	for _, group := range user.Groups {
		if _, ok := g.set[group.Name]; ok {
			return true
		}
	}
	return false
}

func (g *GroupIdentity) IsResponsibleFor(user *models.User, task *models.Task) bool {
	if user == nil || task == nil {
		return false
	}
	return task.HasResponsible(user.ID)
}

func (g *GroupIdentity) AdminGroups() []string {
	return append([]string(nil), g.groups...)
}
