package services

import (
	"context"
	"fmt"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

// PropertyService manages typed key/value metadata attached to entities of
// the active tenant.
type PropertyService struct{}

// NewPropertyService creates a new PropertyService
func NewPropertyService() *PropertyService {
	return &PropertyService{}
}

// GetProperty retrieves one property. Returns (nil, nil) when absent;
// absence is not an error.
func (s *PropertyService) GetProperty(ctx context.Context, rctx *repositories.RequestContext, entityType entities.EntityType, entityID string, name string) (*entities.Property, error) {
	if !entityType.Valid() {
		return nil, repositories.Validation(fmt.Errorf("unknown entity type: %q", entityType))
	}
	return rctx.Repos.Properties.Get(ctx, rctx.OrgID, entityType, entityID, name)
}

// SetProperty upserts a property on an entity of the active org. The entity
// must exist in this tenant; an entity of another tenant is indistinguishable
// from a missing one.
func (s *PropertyService) SetProperty(ctx context.Context, rctx *repositories.RequestContext, entityType entities.EntityType, entityID string, name string, value interface{}) (*entities.Property, error) {
	if !entityType.Valid() {
		return nil, repositories.Validation(fmt.Errorf("unknown entity type: %q", entityType))
	}
	if err := s.ensureEntity(ctx, rctx, entityType, entityID); err != nil {
		return nil, err
	}
	prop := &entities.Property{
		EntityType: entityType,
		EntityID:   entityID,
		Name:       name,
		Value:      value,
	}
	if err := rctx.Repos.Properties.Set(ctx, rctx.OrgID, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

// DeleteProperty removes one property; returns whether a row was removed.
// Deleting an absent property is not an error.
func (s *PropertyService) DeleteProperty(ctx context.Context, rctx *repositories.RequestContext, entityType entities.EntityType, entityID string, name string) (bool, error) {
	if !entityType.Valid() {
		return false, repositories.Validation(fmt.Errorf("unknown entity type: %q", entityType))
	}
	return rctx.Repos.Properties.Delete(ctx, rctx.OrgID, entityType, entityID, name)
}

// ListProperties returns all properties of one entity ordered by name
func (s *PropertyService) ListProperties(ctx context.Context, rctx *repositories.RequestContext, entityType entities.EntityType, entityID string) ([]*entities.Property, error) {
	if !entityType.Valid() {
		return nil, repositories.Validation(fmt.Errorf("unknown entity type: %q", entityType))
	}
	return rctx.Repos.Properties.List(ctx, rctx.OrgID, entityType, entityID)
}

// ensureEntity verifies the target entity exists within the active tenant
func (s *PropertyService) ensureEntity(ctx context.Context, rctx *repositories.RequestContext, entityType entities.EntityType, entityID string) error {
	switch entityType {
	case entities.EntityOrganization:
		if entityID != rctx.OrgID {
			return repositories.NotFound("organization", entityID)
		}
		_, err := rctx.Repos.Organizations.GetByID(ctx, entityID)
		return err
	case entities.EntityUser:
		_, err := rctx.Repos.Users.GetByID(ctx, rctx.OrgID, entityID)
		return err
	case entities.EntityRole:
		_, err := rctx.Repos.Roles.GetByID(ctx, rctx.OrgID, entityID)
		return err
	case entities.EntityResource:
		_, err := rctx.Repos.Resources.GetByID(ctx, rctx.OrgID, entityID)
		return err
	}
	return repositories.Validation(fmt.Errorf("unknown entity type: %q", entityType))
}
