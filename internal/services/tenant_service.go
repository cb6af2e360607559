package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

// TenantService manages the organization lifecycle. Unlike the tenant-scoped
// services it holds the repository set directly: organization creation and
// listing run before any tenant context exists.
type TenantService struct {
	repos *repositories.Set
	log   *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(repos *repositories.Set, log *zap.Logger) *TenantService {
	return &TenantService{repos: repos, log: log}
}

// CreateOrganization creates a new tenant root
func (s *TenantService) CreateOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	org := &entities.Organization{ID: id}
	if err := s.repos.Organizations.Create(ctx, org); err != nil {
		return nil, err
	}
	s.log.Info("organization created", zap.String("org_id", id))
	return org, nil
}

// GetOrganization retrieves one organization
func (s *TenantService) GetOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	return s.repos.Organizations.GetByID(ctx, id)
}

// ListOrganizations returns all organizations
func (s *TenantService) ListOrganizations(ctx context.Context) ([]*entities.Organization, error) {
	return s.repos.Organizations.List(ctx)
}

// DeleteOrganization removes an organization together with every user, role,
// resource, permission grant, and property it owns. The cascade runs in a
// single transaction: either all rows disappear or none do, even when the
// context is cancelled mid-way.
func (s *TenantService) DeleteOrganization(ctx context.Context, id string) error {
	err := s.repos.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
		if err := repos.Properties.DeleteByOrg(ctx, id); err != nil {
			return err
		}
		if err := repos.Permissions.DeleteByOrg(ctx, id); err != nil {
			return err
		}
		if err := repos.Users.DeleteByOrg(ctx, id); err != nil {
			return err
		}
		if err := repos.Roles.DeleteByOrg(ctx, id); err != nil {
			return err
		}
		if err := repos.Resources.DeleteByOrg(ctx, id); err != nil {
			return err
		}
		removed, err := repos.Organizations.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return repositories.NotFound("organization", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("organization deleted", zap.String("org_id", id))
	return nil
}
