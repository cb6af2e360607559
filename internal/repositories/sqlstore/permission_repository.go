package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type permissionRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *permissionRepository) Create(ctx context.Context, orgID string, perm *entities.Permission) error {
	if err := perm.Validate(); err != nil {
		return repositories.Validation(err)
	}

	query, args, err := r.sb.
		Insert("permissions").
		Columns("org_id", "subject_type", "subject_id", "resource_id", "action", "created_at").
		Values(orgID, string(perm.SubjectType), perm.SubjectID, perm.ResourceID, perm.Action, time.Now().UTC()).
		Suffix("ON CONFLICT (org_id, subject_type, subject_id, resource_id, action) DO NOTHING").
		ToSql()
	if err != nil {
		return repositories.Database("build create permission", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("create permission", err)
	}
	return nil
}

func (r *permissionRepository) Delete(ctx context.Context, orgID string, perm *entities.Permission) (bool, error) {
	if err := perm.Validate(); err != nil {
		return false, repositories.Validation(err)
	}

	query, args, err := r.sb.
		Delete("permissions").
		Where(sq.Eq{
			"org_id":       orgID,
			"subject_type": string(perm.SubjectType),
			"subject_id":   perm.SubjectID,
			"resource_id":  perm.ResourceID,
			"action":       perm.Action,
		}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete permission", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete permission", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete permission", err)
	}
	return n > 0, nil
}

func (r *permissionRepository) List(ctx context.Context, orgID string, filter *repositories.PermissionFilter) ([]*entities.Permission, error) {
	builder := r.sb.
		Select("subject_type", "subject_id", "resource_id", "action", "created_at").
		From("permissions").
		Where(sq.Eq{"org_id": orgID}).
		OrderBy("subject_type", "subject_id", "resource_id", "action")

	if filter != nil {
		if filter.SubjectType != "" {
			builder = builder.Where(sq.Eq{"subject_type": string(filter.SubjectType)})
		}
		if filter.SubjectID != "" {
			builder = builder.Where(sq.Eq{"subject_id": filter.SubjectID})
		}
		if filter.ResourceID != "" {
			builder = builder.Where(sq.Eq{"resource_id": filter.ResourceID})
		}
		if filter.Action != "" {
			builder = builder.Where(sq.Eq{"action": filter.Action})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.Database("build list permissions", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list permissions", err)
	}
	defer rows.Close()

	var perms []*entities.Permission
	for rows.Next() {
		var perm entities.Permission
		var subjectType string
		if err := rows.Scan(&subjectType, &perm.SubjectID, &perm.ResourceID, &perm.Action, &perm.CreatedAt); err != nil {
			return nil, repositories.Database("scan permission", err)
		}
		perm.SubjectType = entities.SubjectType(subjectType)
		perms = append(perms, &perm)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate permissions", err)
	}
	return perms, nil
}

func (r *permissionRepository) AnyMatch(ctx context.Context, orgID string, subjects []entities.Subject, action string, resourceIDs []string) (bool, error) {
	if len(subjects) == 0 || len(resourceIDs) == 0 {
		return false, nil
	}

	subjectConds := make(sq.Or, 0, len(subjects))
	for _, s := range subjects {
		subjectConds = append(subjectConds, sq.Eq{
			"subject_type": string(s.Type),
			"subject_id":   s.ID,
		})
	}

	query, args, err := r.sb.
		Select("1").
		From("permissions").
		Where(sq.Eq{"org_id": orgID, "action": action}).
		Where(sq.Eq{"resource_id": resourceIDs}).
		Where(subjectConds).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.Database("build match permissions", err)
	}

	var one int
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, repositories.Database("match permissions", err)
	}
	return true, nil
}

func (r *permissionRepository) DeleteBySubject(ctx context.Context, orgID string, subject entities.Subject) error {
	query, args, err := r.sb.
		Delete("permissions").
		Where(sq.Eq{
			"org_id":       orgID,
			"subject_type": string(subject.Type),
			"subject_id":   subject.ID,
		}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete subject permissions", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete subject permissions", err)
	}
	return nil
}

func (r *permissionRepository) DeleteByResource(ctx context.Context, orgID string, resourceID string) error {
	query, args, err := r.sb.
		Delete("permissions").
		Where(sq.Eq{"org_id": orgID, "resource_id": resourceID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete resource permissions", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete resource permissions", err)
	}
	return nil
}

func (r *permissionRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	query, args, err := r.sb.
		Delete("permissions").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org permissions", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org permissions", err)
	}
	return nil
}
