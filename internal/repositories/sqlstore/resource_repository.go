package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type resourceRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *resourceRepository) Create(ctx context.Context, orgID string, resource *entities.Resource) error {
	if err := resource.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("resources").
		Columns("org_id", "id", "created_at", "updated_at").
		Values(orgID, resource.ID, now, now).
		ToSql()
	if err != nil {
		return repositories.Database("build create resource", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repositories.Conflict("resource", resource.ID)
		}
		return repositories.Database("create resource", err)
	}

	resource.CreatedAt = now
	resource.UpdatedAt = now
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, orgID string, id string) (*entities.Resource, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("resources").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.Database("build get resource", err)
	}

	var resource entities.Resource
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFound("resource", id)
		}
		return nil, repositories.Database("get resource", err)
	}
	return &resource, nil
}

func (r *resourceRepository) Update(ctx context.Context, orgID string, resource *entities.Resource) error {
	if err := resource.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Update("resources").
		Set("updated_at", now).
		Where(sq.Eq{"org_id": orgID, "id": resource.ID}).
		ToSql()
	if err != nil {
		return repositories.Database("build update resource", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return repositories.Database("update resource", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repositories.NotFound("resource", resource.ID)
	}

	resource.UpdatedAt = now
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, orgID string, id string) (bool, error) {
	query, args, err := r.sb.
		Delete("resources").
		Where(sq.Eq{"org_id": orgID, "id": id}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete resource", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete resource", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete resource", err)
	}
	return n > 0, nil
}

func (r *resourceRepository) List(ctx context.Context, orgID string, filter *repositories.ResourceFilter) ([]*entities.Resource, error) {
	builder := r.sb.
		Select("id", "created_at", "updated_at").
		From("resources").
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("id")

	// Delimiter-bounded prefix match: the exact ID or anything below it.
	// Resource IDs cannot contain LIKE metacharacters, so no escaping needed.
	if filter != nil && filter.IDPrefix != "" {
		builder = builder.Where(sq.Or{
			sq.Eq{"id": filter.IDPrefix},
			sq.Like{"id": filter.IDPrefix + entities.ResourceDelimiter + "%"},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.Database("build list resources", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list resources", err)
	}
	defer rows.Close()

	var resources []*entities.Resource
	for rows.Next() {
		var resource entities.Resource
		if err := rows.Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
			return nil, repositories.Database("scan resource", err)
		}
		resources = append(resources, &resource)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate resources", err)
	}
	return resources, nil
}

func (r *resourceRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	query, args, err := r.sb.
		Delete("resources").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org resources", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org resources", err)
	}
	return nil
}
