package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type organizationRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *organizationRepository) Create(ctx context.Context, org *entities.Organization) error {
	if err := org.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("organizations").
		Columns("id", "created_at", "updated_at").
		Values(org.ID, now, now).
		ToSql()
	if err != nil {
		return repositories.Database("build create organization", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return repositories.Conflict("organization", org.ID)
		}
		return repositories.Database("create organization", err)
	}

	org.CreatedAt = now
	org.UpdatedAt = now
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*entities.Organization, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("organizations").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.Database("build get organization", err)
	}

	var org entities.Organization
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFound("organization", id)
		}
		return nil, repositories.Database("get organization", err)
	}
	return &org, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *entities.Organization) error {
	if err := org.Validate(); err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Update("organizations").
		Set("updated_at", now).
		Where(sq.Eq{"id": org.ID}).
		ToSql()
	if err != nil {
		return repositories.Database("build update organization", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return repositories.Database("update organization", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repositories.NotFound("organization", org.ID)
	}

	org.UpdatedAt = now
	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := r.sb.
		Delete("organizations").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete organization", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete organization", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete organization", err)
	}
	return n > 0, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*entities.Organization, error) {
	query, args, err := r.sb.
		Select("id", "created_at", "updated_at").
		From("organizations").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, repositories.Database("build list organizations", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list organizations", err)
	}
	defer rows.Close()

	var orgs []*entities.Organization
	for rows.Next() {
		var org entities.Organization
		if err := rows.Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, repositories.Database("scan organization", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate organizations", err)
	}
	return orgs, nil
}
