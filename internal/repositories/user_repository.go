package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// UserFilter defines filter criteria for listing users
type UserFilter struct {
	RoleID string // Only users assigned this role (optional)
}

// UserRepository defines the interface for user data access. All operations
// are scoped to one organization.
type UserRepository interface {
	// Create stores a new user; ErrConflict if the ID already exists in the org
	Create(ctx context.Context, orgID string, user *entities.User) error

	// GetByID retrieves a user with its role assignments loaded;
	// ErrNotFound if absent
	GetByID(ctx context.Context, orgID string, id string) (*entities.User, error)

	// Update refreshes the user row; ErrNotFound if absent
	Update(ctx context.Context, orgID string, user *entities.User) error

	// Delete removes the user row and its role assignments.
	// Returns whether a user row was removed.
	Delete(ctx context.Context, orgID string, id string) (bool, error)

	// List returns users of the org matching the filter, ordered by ID
	List(ctx context.Context, orgID string, filter *UserFilter) ([]*entities.User, error)

	// AssignRole records a role assignment; idempotent
	AssignRole(ctx context.Context, orgID string, userID string, roleID string) error

	// UnassignRole removes a role assignment; returns whether one existed
	UnassignRole(ctx context.Context, orgID string, userID string, roleID string) (bool, error)

	// ListRoleIDs returns the IDs of roles assigned to the user, ordered
	ListRoleIDs(ctx context.Context, orgID string, userID string) ([]string, error)

	// UnassignRoleFromAll removes every assignment of the role across users
	UnassignRoleFromAll(ctx context.Context, orgID string, roleID string) error

	// DeleteByOrg removes all users and role assignments of the org
	DeleteByOrg(ctx context.Context, orgID string) error
}
