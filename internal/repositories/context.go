package repositories

import "context"

// Set bundles one repository per entity kind plus the transactor. A Set is
// built once per storage backend and shared across requests; inside a
// transaction the Transactor hands callbacks a tx-backed Set.
type Set struct {
	Organizations OrganizationRepository
	Users         UserRepository
	Roles         RoleRepository
	Resources     ResourceRepository
	Permissions   PermissionRepository
	Properties    PropertyRepository
	Tx            Transactor
}

// Transactor executes multi-step operations atomically. Either every write
// performed through the Set passed to fn commits, or none do, including when
// fn fails or the context is cancelled mid-way.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Set) error) error
}

// RequestContext bundles the active tenant and the repository set for one
// inbound operation. It is constructed per call by the boundary layer and
// passed explicitly through the call chain; there is no global database
// handle.
type RequestContext struct {
	OrgID string
	Repos *Set
}

// NewRequestContext creates a request context for the given tenant
func NewRequestContext(orgID string, repos *Set) *RequestContext {
	return &RequestContext{OrgID: orgID, Repos: repos}
}
