package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type userRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *userRepository) Create(ctx context.Context, orgID string, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("users").
		Columns("org_id", "id", "created_at", "updated_at").
		Values(orgID, user.ID, now, now).
		ToSql()
	if err != nil {
		return repositories.Database("build create user", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repositories.Conflict("user", user.ID)
		}
		return repositories.Database("create user", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.User, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.Database("build get user", err)
	}

	var user entities.User
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFound("user", id)
		}
		return nil, repositories.Database("get user", err)
	}

	roleIDs, err := r.ListRoleIDs(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	user.RoleIDs = roleIDs
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, orgID string, user *entities.User) error {
	if err := user.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Update("users").
		Set("updated_at", now).
		Where(sq.Eq{"org_id": orgID, "id": user.ID}).
		ToSql()
	if err != nil {
		return repositories.Database("build update user", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return repositories.Database("update user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repositories.NotFound("user", user.ID)
	}

	user.UpdatedAt = now
	return nil
}

func (r *userRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	query, args, err := r.sb.
		Delete("user_roles").
		Where(sq.Eq{"org_id": orgID, "user_id": id}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete user roles", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return false, repositories.Database("delete user roles", err)
	}

	query, args, err = r.sb.
		Delete("users").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete user", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete user", err)
	}
	return n > 0, nil
}

func (r *userRepository) List(ctx context.Context, orgID string, filter *repositories.UserFilter) ([]*entities.User, error) {
	builder := r.sb.
		Select("u.id", "u.created_at", "u.updated_at").
		From("users u").
		Where(sq.Eq{"u.org_id": orgID}).
		OrderBy("u.id")

	if filter != nil && filter.RoleID != "" {
		builder = builder.
			Join("user_roles ur ON ur.org_id = u.org_id AND ur.user_id = u.id").
			Where(sq.Eq{"ur.role_id": filter.RoleID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.Database("build list users", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list users", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		var user entities.User
		if err := rows.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, repositories.Database("scan user", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate users", err)
	}

	for _, user := range users {
		roleIDs, err := r.ListRoleIDs(ctx, orgID, user.ID)
		if err != nil {
			return nil, err
		}
		user.RoleIDs = roleIDs
	}
	return users, nil
}

func (r *userRepository) AssignRole(ctx context.Context, orgID string, userID string, roleID string) error {
	query, args, err := r.sb.
		Insert("user_roles").
		Columns("org_id", "user_id", "role_id", "created_at").
		Values(orgID, userID, roleID, time.Now().UTC()).
		Suffix("ON CONFLICT (org_id, user_id, role_id) DO NOTHING").
		ToSql()
	if err != nil {
		return repositories.Database("build assign role", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("assign role", err)
	}
	return nil
}

func (r *userRepository) UnassignRole(ctx context.Context, orgID string, userID string, roleID string) (bool, error) {
	query, args, err := r.sb.
		Delete("user_roles").
		Where(sq.Eq{"org_id": orgID, "user_id": userID, "role_id": roleID}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build unassign role", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("unassign role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("unassign role", err)
	}
	return n > 0, nil
}

func (r *userRepository) ListRoleIDs(ctx context.Context, orgID string, userID string) ([]string, error) {
	query, args, err := r.sb.
		Select("role_id").
		From("user_roles").
		Where(sq.Eq{"org_id": orgID, "user_id": userID}).
		OrderBy("role_id").
		ToSql()
	if err != nil {
		return nil, repositories.Database("build list role IDs", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list role IDs", err)
	}
	defer rows.Close()

	var roleIDs []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, repositories.Database("scan role ID", err)
		}
		roleIDs = append(roleIDs, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate role IDs", err)
	}
	return roleIDs, nil
}

func (r *userRepository) UnassignRoleFromAll(ctx context.Context, orgID string, roleID string) error {
	query, args, err := r.sb.
		Delete("user_roles").
		Where(sq.Eq{"org_id": orgID, "role_id": roleID}).
		ToSql()
	if err != nil {
		return repositories.Database("build unassign role from all", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("unassign role from all", err)
	}
	return nil
}

func (r *userRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	query, args, err := r.sb.
		Delete("user_roles").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org user roles", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org user roles", err)
	}

	query, args, err = r.sb.
		Delete("users").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org users", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org users", err)
	}
	return nil
}
