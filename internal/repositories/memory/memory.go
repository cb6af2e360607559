// Package memory implements the repository interfaces with in-process maps.
// It backs tests and the demo mode; semantics mirror sqlstore, including
// tenant scoping, conflict detection, and atomic multi-step operations
// (implemented by snapshotting state and restoring it on failure).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type scopedKey struct {
	orgID string
	id    string
}

type assignKey struct {
	orgID  string
	userID string
	roleID string
}

type permKey struct {
	orgID       string
	subjectType entities.SubjectType
	subjectID   string
	resourceID  string
	action      string
}

type propKey struct {
	orgID      string
	entityType entities.EntityType
	entityID   string
	name       string
}

type store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	orgs        map[string]entities.Organization
	users       map[scopedKey]entities.User
	userRoles   map[assignKey]time.Time
	roles       map[scopedKey]entities.Role
	resources   map[scopedKey]entities.Resource
	permissions map[permKey]entities.Permission
	properties  map[propKey]entities.Property
}

// NewSet builds a fully in-memory repository set
func NewSet() *repositories.Set {
	s := &store{
		orgs:        make(map[string]entities.Organization),
		users:       make(map[scopedKey]entities.User),
		userRoles:   make(map[assignKey]time.Time),
		roles:       make(map[scopedKey]entities.Role),
		resources:   make(map[scopedKey]entities.Resource),
		permissions: make(map[permKey]entities.Permission),
		properties:  make(map[propKey]entities.Property),
	}
	set := &repositories.Set{
		Organizations: &organizationRepository{s},
		Users:         &userRepository{s},
		Roles:         &roleRepository{s},
		Resources:     &resourceRepository{s},
		Permissions:   &permissionRepository{s},
		Properties:    &propertyRepository{s},
	}
	set.Tx = &transactor{store: s, set: set}
	return set
}

type snapshot struct {
	orgs        map[string]entities.Organization
	users       map[scopedKey]entities.User
	userRoles   map[assignKey]time.Time
	roles       map[scopedKey]entities.Role
	resources   map[scopedKey]entities.Resource
	permissions map[permKey]entities.Permission
	properties  map[propKey]entities.Property
}

func (s *store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		orgs:        cloneMap(s.orgs),
		users:       cloneMap(s.users),
		userRoles:   cloneMap(s.userRoles),
		roles:       cloneMap(s.roles),
		resources:   cloneMap(s.resources),
		permissions: cloneMap(s.permissions),
		properties:  cloneMap(s.properties),
	}
}

func (s *store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = snap.orgs
	s.users = snap.users
	s.userRoles = snap.userRoles
	s.roles = snap.roles
	s.resources = snap.resources
	s.permissions = snap.permissions
	s.properties = snap.properties
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// transactor serializes multi-step operations and restores the pre-tx state
// when the callback fails or the context is cancelled.
type transactor struct {
	store *store
	set   *repositories.Set
}

func (t *transactor) WithinTx(ctx context.Context, fn func(repos *repositories.Set) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	inner := *t.set
	inner.Tx = &nestedTransactor{set: &inner}

	snap := t.store.snapshot()
	if err := fn(&inner); err != nil {
		t.store.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		t.store.restore(snap)
		return repositories.Database("transaction cancelled", err)
	}
	return nil
}

// nestedTransactor lets code inside a transaction call WithinTx again; the
// inner call joins the already-open transaction.
type nestedTransactor struct {
	set *repositories.Set
}

func (t *nestedTransactor) WithinTx(ctx context.Context, fn func(repos *repositories.Set) error) error {
	return fn(t.set)
}

type organizationRepository struct{ s *store }

func (r *organizationRepository) Create(ctx context.Context, org *entities.Organization) error {
	if err := org.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[org.ID]; ok {
		return repositories.Conflict("organization", org.ID)
	}
	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now
	r.s.orgs[org.ID] = *org
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*entities.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	org, ok := r.s.orgs[id]
	if !ok {
		return nil, repositories.NotFound("organization", id)
	}
	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *entities.Organization) error {
	if err := org.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orgs[org.ID]
	if !ok {
		return repositories.NotFound("organization", org.ID)
	}
	stored.UpdatedAt = time.Now().UTC()
	r.s.orgs[org.ID] = stored
	org.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[id]; !ok {
		return false, nil
	}
	delete(r.s.orgs, id)
	return true, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*entities.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orgs []*entities.Organization
	for _, org := range r.s.orgs {
		o := org
		orgs = append(orgs, &o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

type userRepository struct{ s *store }

func (r *userRepository) Create(ctx context.Context, orgID string, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, user.ID}
	if _, ok := r.s.users[key]; ok {
		return repositories.Conflict("user", user.ID)
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[key] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[scopedKey{orgID, id}]
	if !ok {
		return nil, repositories.NotFound("user", id)
	}
	user.RoleIDs = r.roleIDsLocked(orgID, id)
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, orgID string, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, user.ID}
	stored, ok := r.s.users[key]
	if !ok {
		return repositories.NotFound("user", user.ID)
	}
	stored.UpdatedAt = time.Now().UTC()
	r.s.users[key] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, id}
	if _, ok := r.s.users[key]; !ok {
		return false, nil
	}
	delete(r.s.users, key)
	for ak := range r.s.userRoles {
		if ak.orgID == orgID && ak.userID == id {
			delete(r.s.userRoles, ak)
		}
	}
	return true, nil
}

func (r *userRepository) List(ctx context.Context, orgID string, filter *repositories.UserFilter) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*entities.User
	for key, user := range r.s.users {
		if key.orgID != orgID {
			continue
		}
		u := user
		u.RoleIDs = r.roleIDsLocked(orgID, key.id)
		if filter != nil && filter.RoleID != "" && !u.HasRole(filter.RoleID) {
			continue
		}
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) AssignRole(ctx context.Context, orgID string, userID string, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := assignKey{orgID, userID, roleID}
	if _, ok := r.s.userRoles[key]; !ok {
		r.s.userRoles[key] = time.Now().UTC()
	}
	return nil
}

func (r *userRepository) UnassignRole(ctx context.Context, orgID string, userID string, roleID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := assignKey{orgID, userID, roleID}
	if _, ok := r.s.userRoles[key]; !ok {
		return false, nil
	}
	delete(r.s.userRoles, key)
	return true, nil
}

func (r *userRepository) ListRoleIDs(ctx context.Context, orgID string, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.roleIDsLocked(orgID, userID), nil
}

func (r *userRepository) roleIDsLocked(orgID, userID string) []string {
	var roleIDs []string
	for key := range r.s.userRoles {
		if key.orgID == orgID && key.userID == userID {
			roleIDs = append(roleIDs, key.roleID)
		}
	}
	sort.Strings(roleIDs)
	return roleIDs
}

func (r *userRepository) UnassignRoleFromAll(ctx context.Context, orgID string, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.userRoles {
		if key.orgID == orgID && key.roleID == roleID {
			delete(r.s.userRoles, key)
		}
	}
	return nil
}

func (r *userRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.users {
		if key.orgID == orgID {
			delete(r.s.users, key)
		}
	}
	for key := range r.s.userRoles {
		if key.orgID == orgID {
			delete(r.s.userRoles, key)
		}
	}
	return nil
}

type roleRepository struct{ s *store }

func (r *roleRepository) Create(ctx context.Context, orgID string, role *entities.Role) error {
	if err := role.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, role.ID}
	if _, ok := r.s.roles[key]; ok {
		return repositories.Conflict("role", role.ID)
	}
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now
	r.s.roles[key] = *role
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[scopedKey{orgID, id}]
	if !ok {
		return nil, repositories.NotFound("role", id)
	}
	return &role, nil
}

func (r *roleRepository) Update(ctx context.Context, orgID string, role *entities.Role) error {
	if err := role.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, role.ID}
	stored, ok := r.s.roles[key]
	if !ok {
		return repositories.NotFound("role", role.ID)
	}
	stored.UpdatedAt = time.Now().UTC()
	r.s.roles[key] = stored
	role.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, id}
	if _, ok := r.s.roles[key]; !ok {
		return false, nil
	}
	delete(r.s.roles, key)
	return true, nil
}

func (r *roleRepository) List(ctx context.Context, orgID string) ([]*entities.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var roles []*entities.Role
	for key, role := range r.s.roles {
		if key.orgID != orgID {
			continue
		}
		ro := role
		roles = append(roles, &ro)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (r *roleRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.roles {
		if key.orgID == orgID {
			delete(r.s.roles, key)
		}
	}
	return nil
}

type resourceRepository struct{ s *store }

func (r *resourceRepository) Create(ctx context.Context, orgID string, resource *entities.Resource) error {
	if err := resource.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, resource.ID}
	if _, ok := r.s.resources[key]; ok {
		return repositories.Conflict("resource", resource.ID)
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now
	r.s.resources[key] = *resource
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resource, ok := r.s.resources[scopedKey{orgID, id}]
	if !ok {
		return nil, repositories.NotFound("resource", id)
	}
	return &resource, nil
}

func (r *resourceRepository) Update(ctx context.Context, orgID string, resource *entities.Resource) error {
	if err := resource.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, resource.ID}
	stored, ok := r.s.resources[key]
	if !ok {
		return repositories.NotFound("resource", resource.ID)
	}
	stored.UpdatedAt = time.Now().UTC()
	r.s.resources[key] = stored
	resource.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := scopedKey{orgID, id}
	if _, ok := r.s.resources[key]; !ok {
		return false, nil
	}
	delete(r.s.resources, key)
	return true, nil
}

func (r *resourceRepository) List(ctx context.Context, orgID string, filter *repositories.ResourceFilter) ([]*entities.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var resources []*entities.Resource
	for key, resource := range r.s.resources {
		if key.orgID != orgID {
			continue
		}
		if filter != nil && filter.IDPrefix != "" && !matchesPrefix(key.id, filter.IDPrefix) {
			continue
		}
		res := resource
		resources = append(resources, &res)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })
	return resources, nil
}

// matchesPrefix applies delimiter-bounded containment: "a/b" matches "a/b"
// and "a/b/c" but never "a/bc".
func matchesPrefix(id, prefix string) bool {
	if id == prefix {
		return true
	}
	bounded := prefix + entities.ResourceDelimiter
	return len(id) > len(bounded) && id[:len(bounded)] == bounded
}

func (r *resourceRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.resources {
		if key.orgID == orgID {
			delete(r.s.resources, key)
		}
	}
	return nil
}

type permissionRepository struct{ s *store }

func (r *permissionRepository) Create(ctx context.Context, orgID string, perm *entities.Permission) error {
	if err := perm.Validate(); err != nil {
		return repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := permKey{orgID, perm.SubjectType, perm.SubjectID, perm.ResourceID, perm.Action}
	if _, ok := r.s.permissions[key]; ok {
		return nil
	}
	perm.CreatedAt = time.Now().UTC()
	r.s.permissions[key] = *perm
	return nil
}

func (r *permissionRepository) Delete(ctx context.Context, orgID string, perm *entities.Permission) (bool, error) {
	if err := perm.Validate(); err != nil {
		return false, repositories.Validation(err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := permKey{orgID, perm.SubjectType, perm.SubjectID, perm.ResourceID, perm.Action}
	if _, ok := r.s.permissions[key]; !ok {
		return false, nil
	}
	delete(r.s.permissions, key)
	return true, nil
}

func (r *permissionRepository) List(ctx context.Context, orgID string, filter *repositories.PermissionFilter) ([]*entities.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var perms []*entities.Permission
	for key, perm := range r.s.permissions {
		if key.orgID != orgID {
			continue
		}
		if filter != nil {
			if filter.SubjectType != "" && key.subjectType != filter.SubjectType {
				continue
			}
			if filter.SubjectID != "" && key.subjectID != filter.SubjectID {
				continue
			}
			if filter.ResourceID != "" && key.resourceID != filter.ResourceID {
				continue
			}
			if filter.Action != "" && key.action != filter.Action {
				continue
			}
		}
		p := perm
		perms = append(perms, &p)
	}
	sort.Slice(perms, func(i, j int) bool {
		a, b := perms[i], perms[j]
		if a.SubjectType != b.SubjectType {
			return a.SubjectType < b.SubjectType
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		return a.Action < b.Action
	})
	return perms, nil
}

func (r *permissionRepository) AnyMatch(ctx context.Context, orgID string, subjects []entities.Subject, action string, resourceIDs []string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, subject := range subjects {
		for _, resourceID := range resourceIDs {
			key := permKey{orgID, subject.Type, subject.ID, resourceID, action}
			if _, ok := r.s.permissions[key]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *permissionRepository) DeleteBySubject(ctx context.Context, orgID string, subject entities.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.permissions {
		if key.orgID == orgID && key.subjectType == subject.Type && key.subjectID == subject.ID {
			delete(r.s.permissions, key)
		}
	}
	return nil
}

func (r *permissionRepository) DeleteByResource(ctx context.Context, orgID string, resourceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.permissions {
		if key.orgID == orgID && key.resourceID == resourceID {
			delete(r.s.permissions, key)
		}
	}
	return nil
}

func (r *permissionRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.permissions {
		if key.orgID == orgID {
			delete(r.s.permissions, key)
		}
	}
	return nil
}

type propertyRepository struct{ s *store }

func (r *propertyRepository) Get(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (*entities.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prop, ok := r.s.properties[propKey{orgID, entityType, entityID, name}]
	if !ok {
		return nil, nil
	}
	return &prop, nil
}

func (r *propertyRepository) Set(ctx context.Context, orgID string, prop *entities.Property) error {
	if err := prop.Validate(); err != nil {
		return repositories.Validation(err)
	}
	valueType, err := entities.InferValueType(prop.Value)
	if err != nil {
		return repositories.Validation(err)
	}
	prop.ValueType = valueType

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := propKey{orgID, prop.EntityType, prop.EntityID, prop.Name}
	now := time.Now().UTC()
	if existing, ok := r.s.properties[key]; ok {
		prop.CreatedAt = existing.CreatedAt
	} else {
		prop.CreatedAt = now
	}
	prop.UpdatedAt = now
	r.s.properties[key] = *prop
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := propKey{orgID, entityType, entityID, name}
	if _, ok := r.s.properties[key]; !ok {
		return false, nil
	}
	delete(r.s.properties, key)
	return true, nil
}

func (r *propertyRepository) List(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) ([]*entities.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var props []*entities.Property
	for key, prop := range r.s.properties {
		if key.orgID == orgID && key.entityType == entityType && key.entityID == entityID {
			p := prop
			props = append(props, &p)
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	return props, nil
}

func (r *propertyRepository) DeleteByEntity(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.properties {
		if key.orgID == orgID && key.entityType == entityType && key.entityID == entityID {
			delete(r.s.properties, key)
		}
	}
	return nil
}

func (r *propertyRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key := range r.s.properties {
		if key.orgID == orgID {
			delete(r.s.properties, key)
		}
	}
	return nil
}
