package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// OrganizationRepository defines the interface for organization data access.
// Organizations are the tenant roots and the only entities not scoped by an
// org ID.
type OrganizationRepository interface {
	// Create stores a new organization; ErrConflict if the ID already exists
	Create(ctx context.Context, org *entities.Organization) error

	// GetByID retrieves an organization; ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*entities.Organization, error)

	// Update refreshes the organization row; ErrNotFound if absent
	Update(ctx context.Context, org *entities.Organization) error

	// Delete removes the organization row only (cascading is the caller's
	// job, inside a transaction). Returns whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns all organizations ordered by ID
	List(ctx context.Context) ([]*entities.Organization, error)
}
