package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// PropertyRepository defines the interface for typed property data access.
// All operations are scoped to one organization; touching a property of an
// entity in another tenant behaves as not-found.
type PropertyRepository interface {
	// Get retrieves one property; returns (nil, nil) when absent, since
	// absence is not an error
	Get(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (*entities.Property, error)

	// Set upserts a property, overwriting any existing value and type for
	// the same name
	Set(ctx context.Context, orgID string, prop *entities.Property) error

	// Delete removes one property; returns whether a row was removed
	Delete(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (bool, error)

	// List returns all properties of one entity ordered by name
	List(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) ([]*entities.Property, error)

	// DeleteByEntity removes every property of one entity
	DeleteByEntity(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) error

	// DeleteByOrg removes all properties of the org
	DeleteByOrg(ctx context.Context, orgID string) error
}
