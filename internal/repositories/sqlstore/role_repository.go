package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type roleRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *roleRepository) Create(ctx context.Context, orgID string, role *entities.Role) error {
	if err := role.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("roles").
		Columns("org_id", "id", "created_at", "updated_at").
		Values(orgID, role.ID, now, now).
		ToSql()
	if err != nil {
		return repositories.Database("build create role", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repositories.Conflict("role", role.ID)
		}
		return repositories.Database("create role", err)
	}

	role.CreatedAt = now
	role.UpdatedAt = now
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.Role, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("roles").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.Database("build get role", err)
	}

	var role entities.Role
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFound("role", id)
		}
		return nil, repositories.Database("get role", err)
	}
	return &role, nil
}

func (r *roleRepository) Update(ctx context.Context, orgID string, role *entities.Role) error {
	if err := role.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Update("roles").
		Set("updated_at", now).
		Where(sq.Eq{"org_id": orgID, "id": role.ID}).
		ToSql()
	if err != nil {
		return repositories.Database("build update role", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return repositories.Database("update role", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repositories.NotFound("role", role.ID)
	}

	role.UpdatedAt = now
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	query, args, err := r.sb.
		Delete("roles").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete role", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete role", err)
	}
	return n > 0, nil
}

func (r *roleRepository) List(ctx context.Context, orgID string) ([]*entities.Role, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("roles").
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, repositories.Database("build list roles", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list roles", err)
	}
	defer rows.Close()

	var roles []*entities.Role
	for rows.Next() {
		var role entities.Role
		if err := rows.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, repositories.Database("scan role", err)
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate roles", err)
	}
	return roles, nil
}

func (r *roleRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	query, args, err := r.sb.
		Delete("roles").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org roles", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org roles", err)
	}
	return nil
}
