package services

import (
	"context"
	"fmt"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

// PermissionService manages permission grants within one tenant. Reads
// answering "may X do A on R" live in the authorization package; this service
// covers the write surface.
type PermissionService struct{}

// NewPermissionService creates a new PermissionService
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// Grant records a permission grant. The subject must exist in the active
// org; the resource scope is normalized but need not exist as a stored row,
// since scopes are matched on ID text. Granting an existing tuple is a no-op.
func (s *PermissionService) Grant(ctx context.Context, rctx *repositories.RequestContext, subject entities.Subject, rawResourceID string, action string) (*entities.Permission, error) {
	resourceID, err := entities.NormalizeResourceID(rawResourceID)
	if err != nil {
		return nil, repositories.Validation(err)
	}
	if err := s.ensureSubject(ctx, rctx, subject); err != nil {
		return nil, err
	}
	perm := &entities.Permission{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		ResourceID:  resourceID,
		Action:      action,
	}
	if err := rctx.Repos.Permissions.Create(ctx, rctx.OrgID, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

// Revoke removes a grant; returns whether one existed. Revoking is the only
// way to take access away; there are no deny records.
func (s *PermissionService) Revoke(ctx context.Context, rctx *repositories.RequestContext, subject entities.Subject, rawResourceID string, action string) (bool, error) {
	resourceID, err := entities.NormalizeResourceID(rawResourceID)
	if err != nil {
		return false, repositories.Validation(err)
	}
	perm := &entities.Permission{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		ResourceID:  resourceID,
		Action:      action,
	}
	return rctx.Repos.Permissions.Delete(ctx, rctx.OrgID, perm)
}

// ListGrants returns grants of the active org matching the filter
func (s *PermissionService) ListGrants(ctx context.Context, rctx *repositories.RequestContext, filter *repositories.PermissionFilter) ([]*entities.Permission, error) {
	return rctx.Repos.Permissions.List(ctx, rctx.OrgID, filter)
}

// ensureSubject verifies the grant holder exists within the active tenant
func (s *PermissionService) ensureSubject(ctx context.Context, rctx *repositories.RequestContext, subject entities.Subject) error {
	switch subject.Type {
	case entities.SubjectUser:
		_, err := rctx.Repos.Users.GetByID(ctx, rctx.OrgID, subject.ID)
		return err
	case entities.SubjectRole:
		_, err := rctx.Repos.Roles.GetByID(ctx, rctx.OrgID, subject.ID)
		return err
	}
	return repositories.Validation(fmt.Errorf("unknown subject type: %q", subject.Type))
}
