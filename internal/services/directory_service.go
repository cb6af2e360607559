package services

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

// DirectoryService manages users, roles, and role assignments within one
// tenant. Every method takes the request context carrying the active org and
// its repositories.
type DirectoryService struct{}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService() *DirectoryService {
	return &DirectoryService{}
}

// ensureOrg verifies that the tenant in the request context exists
func ensureOrg(ctx context.Context, rctx *repositories.RequestContext) error {
	_, err := rctx.Repos.Organizations.GetByID(ctx, rctx.OrgID)
	return err
}

// CreateUser creates a user in the active org
func (s *DirectoryService) CreateUser(ctx context.Context, rctx *repositories.RequestContext, id string) (*entities.User, error) {
	if err := ensureOrg(ctx, rctx); err != nil {
		return nil, err
	}
	user := &entities.User{ID: id}
	if err := rctx.Repos.Users.Create(ctx, rctx.OrgID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user with its role assignments
func (s *DirectoryService) GetUser(ctx context.Context, rctx *repositories.RequestContext, id string) (*entities.User, error) {
	return rctx.Repos.Users.GetByID(ctx, rctx.OrgID, id)
}

// ListUsers returns users of the active org matching the filter
func (s *DirectoryService) ListUsers(ctx context.Context, rctx *repositories.RequestContext, filter *repositories.UserFilter) ([]*entities.User, error) {
	return rctx.Repos.Users.List(ctx, rctx.OrgID, filter)
}

// DeleteUser removes a user together with its properties, its permission
// grants, and its role assignments, atomically.
func (s *DirectoryService) DeleteUser(ctx context.Context, rctx *repositories.RequestContext, id string) error {
	orgID := rctx.OrgID
	return rctx.Repos.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
		if err := repos.Properties.DeleteByEntity(ctx, orgID, entities.EntityUser, id); err != nil {
			return err
		}
		if err := repos.Permissions.DeleteBySubject(ctx, orgID, entities.Subject{Type: entities.SubjectUser, ID: id}); err != nil {
			return err
		}
		removed, err := repos.Users.Delete(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !removed {
			return repositories.NotFound("user", id)
		}
		return nil
	})
}

// CreateRole creates a role in the active org
func (s *DirectoryService) CreateRole(ctx context.Context, rctx *repositories.RequestContext, id string) (*entities.Role, error) {
	if err := ensureOrg(ctx, rctx); err != nil {
		return nil, err
	}
	role := &entities.Role{ID: id}
	if err := rctx.Repos.Roles.Create(ctx, rctx.OrgID, role); err != nil {
		return nil, err
	}
	return role, nil
}

// GetRole retrieves a role
func (s *DirectoryService) GetRole(ctx context.Context, rctx *repositories.RequestContext, id string) (*entities.Role, error) {
	return rctx.Repos.Roles.GetByID(ctx, rctx.OrgID, id)
}

// ListRoles returns all roles of the active org
func (s *DirectoryService) ListRoles(ctx context.Context, rctx *repositories.RequestContext) ([]*entities.Role, error) {
	return rctx.Repos.Roles.List(ctx, rctx.OrgID)
}

// DeleteRole removes a role together with its properties, its grants, and
// every assignment of it, atomically. Users keep existing; they only lose
// the role.
func (s *DirectoryService) DeleteRole(ctx context.Context, rctx *repositories.RequestContext, id string) error {
	orgID := rctx.OrgID
	return rctx.Repos.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
		if err := repos.Properties.DeleteByEntity(ctx, orgID, entities.EntityRole, id); err != nil {
			return err
		}
		if err := repos.Permissions.DeleteBySubject(ctx, orgID, entities.Subject{Type: entities.SubjectRole, ID: id}); err != nil {
			return err
		}
		if err := repos.Users.UnassignRoleFromAll(ctx, orgID, id); err != nil {
			return err
		}
		removed, err := repos.Roles.Delete(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !removed {
			return repositories.NotFound("role", id)
		}
		return nil
	})
}

// AssignRole assigns a role to a user. Both must exist in the active org,
// which keeps role references from crossing tenant boundaries. Assigning an
// already-held role is a no-op.
func (s *DirectoryService) AssignRole(ctx context.Context, rctx *repositories.RequestContext, userID string, roleID string) error {
	if _, err := rctx.Repos.Users.GetByID(ctx, rctx.OrgID, userID); err != nil {
		return err
	}
	if _, err := rctx.Repos.Roles.GetByID(ctx, rctx.OrgID, roleID); err != nil {
		return err
	}
	return rctx.Repos.Users.AssignRole(ctx, rctx.OrgID, userID, roleID)
}

// UnassignRole removes a role assignment; removing one the user does not
// hold is a no-op. Returns whether an assignment was removed.
func (s *DirectoryService) UnassignRole(ctx context.Context, rctx *repositories.RequestContext, userID string, roleID string) (bool, error) {
	if _, err := rctx.Repos.Users.GetByID(ctx, rctx.OrgID, userID); err != nil {
		return false, err
	}
	return rctx.Repos.Users.UnassignRole(ctx, rctx.OrgID, userID, roleID)
}
