package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// ResourceFilter defines filter criteria for listing resources
type ResourceFilter struct {
	// IDPrefix restricts the result to resources whose ID equals the prefix
	// or starts with prefix + "/". Empty matches every resource of the org.
	// Matching is strictly delimiter-bounded: prefix "a/b" never matches "a/bc".
	IDPrefix string
}

// ResourceRepository defines the interface for resource data access. All
// operations are scoped to one organization. IDs are normalized before they
// reach the repository.
type ResourceRepository interface {
	// Create stores a new resource; ErrConflict if the ID already exists in the org
	Create(ctx context.Context, orgID string, resource *entities.Resource) error

	// GetByID retrieves a resource; ErrNotFound if absent
	GetByID(ctx context.Context, orgID string, id string) (*entities.Resource, error)

	// Update refreshes the resource row; ErrNotFound if absent
	Update(ctx context.Context, orgID string, resource *entities.Resource) error

	// Delete removes the resource row only. Descendant resources are not
	// touched; dropping them is the caller's responsibility.
	// Returns whether a row was removed.
	Delete(ctx context.Context, orgID string, id string) (bool, error)

	// List returns resources of the org matching the filter, ordered
	// lexicographically by ID
	List(ctx context.Context, orgID string, filter *ResourceFilter) ([]*entities.Resource, error)

	// DeleteByOrg removes all resources of the org
	DeleteByOrg(ctx context.Context, orgID string) error
}
