package services

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

// ResourceService manages hierarchical resources within one tenant. Raw IDs
// are normalized here, at the boundary of the domain; repositories only ever
// see canonical IDs.
type ResourceService struct{}

// NewResourceService creates a new ResourceService
func NewResourceService() *ResourceService {
	return &ResourceService{}
}

// CreateResource creates a resource under the active org. The raw ID is
// validated and normalized; malformed IDs fail with a validation error, an
// existing ID with a conflict.
func (s *ResourceService) CreateResource(ctx context.Context, rctx *repositories.RequestContext, rawID string) (*entities.Resource, error) {
	id, err := entities.NormalizeResourceID(rawID)
	if err != nil {
		return nil, repositories.Validation(err)
	}
	if err := ensureOrg(ctx, rctx); err != nil {
		return nil, err
	}
	resource := &entities.Resource{ID: id}
	if err := rctx.Repos.Resources.Create(ctx, rctx.OrgID, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// GetResource retrieves a resource by ID
func (s *ResourceService) GetResource(ctx context.Context, rctx *repositories.RequestContext, rawID string) (*entities.Resource, error) {
	id, err := entities.NormalizeResourceID(rawID)
	if err != nil {
		return nil, repositories.Validation(err)
	}
	return rctx.Repos.Resources.GetByID(ctx, rctx.OrgID, id)
}

// ListByIDPrefix returns resources whose ID equals the prefix or sits below
// it in the hierarchy, ordered lexicographically. An empty prefix returns
// every resource of the tenant.
func (s *ResourceService) ListByIDPrefix(ctx context.Context, rctx *repositories.RequestContext, prefix string) ([]*entities.Resource, error) {
	filter := &repositories.ResourceFilter{}
	if prefix != "" {
		normalized, err := entities.NormalizeResourceID(prefix)
		if err != nil {
			return nil, repositories.Validation(err)
		}
		filter.IDPrefix = normalized
	}
	return rctx.Repos.Resources.List(ctx, rctx.OrgID, filter)
}

// DeleteResource removes a resource, its properties, and the grants scoped
// to exactly its ID, atomically. Descendant resources are NOT deleted and
// become orphaned unless the caller removes them explicitly; grants on
// ancestor scopes keep covering the freed ID space.
func (s *ResourceService) DeleteResource(ctx context.Context, rctx *repositories.RequestContext, rawID string) error {
	id, err := entities.NormalizeResourceID(rawID)
	if err != nil {
		return repositories.Validation(err)
	}
	orgID := rctx.OrgID
	return rctx.Repos.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
		if err := repos.Permissions.DeleteByResource(ctx, orgID, id); err != nil {
			return err
		}
		if err := repos.Properties.DeleteByEntity(ctx, orgID, entities.EntityResource, id); err != nil {
			return err
		}
		removed, err := repos.Resources.Delete(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !removed {
			return repositories.NotFound("resource", id)
		}
		return nil
	})
}
