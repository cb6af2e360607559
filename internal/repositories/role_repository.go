package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// RoleRepository defines the interface for role data access. All operations
// are scoped to one organization.
type RoleRepository interface {
	// Create stores a new role; ErrConflict if the ID already exists in the org
	Create(ctx context.Context, orgID string, role *entities.Role) error

	// GetByID retrieves a role; ErrNotFound if absent
	GetByID(ctx context.Context, orgID string, id string) (*entities.Role, error)

	// Update refreshes the role row; ErrNotFound if absent
	Update(ctx context.Context, orgID string, role *entities.Role) error

	// Delete removes the role row. Returns whether a row was removed.
	Delete(ctx context.Context, orgID string, id string) (bool, error)

	// List returns all roles of the org ordered by ID
	List(ctx context.Context, orgID string) ([]*entities.Role, error)

	// DeleteByOrg removes all roles of the org
	DeleteByOrg(ctx context.Context, orgID string) error
}
