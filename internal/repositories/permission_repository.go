package repositories

import (
	"context"

	"github.com/torii-auth/torii/internal/entities"
)

// PermissionFilter defines filter criteria for listing grants
type PermissionFilter struct {
	SubjectType entities.SubjectType // Filter by subject type (optional)
	SubjectID   string               // Filter by subject ID (optional)
	ResourceID  string               // Filter by exact resource scope (optional)
	Action      string               // Filter by action (optional)
}

// PermissionRepository defines the interface for permission grant data
// access. All operations are scoped to one organization.
type PermissionRepository interface {
	// Create records a grant; idempotent for an identical tuple
	Create(ctx context.Context, orgID string, perm *entities.Permission) error

	// Delete removes a grant; returns whether one existed
	Delete(ctx context.Context, orgID string, perm *entities.Permission) (bool, error)

	// List returns grants of the org matching the filter
	List(ctx context.Context, orgID string, filter *PermissionFilter) ([]*entities.Permission, error)

	// AnyMatch reports whether any grant exists for one of the subjects with
	// the given action and a resource scope in resourceIDs. This is the single
	// query behind permission resolution: one matching row anywhere suffices.
	AnyMatch(ctx context.Context, orgID string, subjects []entities.Subject, action string, resourceIDs []string) (bool, error)

	// DeleteBySubject removes every grant held by the subject
	DeleteBySubject(ctx context.Context, orgID string, subject entities.Subject) error

	// DeleteByResource removes every grant scoped to exactly resourceID.
	// Grants on descendant scopes are left alone.
	DeleteByResource(ctx context.Context, orgID string, resourceID string) error

	// DeleteByOrg removes all grants of the org
	DeleteByOrg(ctx context.Context, orgID string) error
}
