package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

type propertyRepository struct {
	q  queryer
	sb sq.StatementBuilderType
}

func (r *propertyRepository) Get(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (*entities.Property, error) {
	query, args, err := r.sb.
		Select("name", "value", "value_type", "created_at", "updated_at").
		From("properties").
		Where(sq.Eq{
			"org_id":      orgID,
			"entity_type": string(entityType),
			"entity_id":   entityID,
			"name":        name,
		}).
		ToSql()
	if err != nil {
		return nil, repositories.Database("build get property", err)
	}

	prop := entities.Property{EntityType: entityType, EntityID: entityID}
	var valueJSON, valueType string
	row := r.q.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&prop.Name, &valueJSON, &valueType, &prop.CreatedAt, &prop.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, repositories.Database("get property", err)
	}

	prop.ValueType = entities.ValueType(valueType)
	if err := prop.UnmarshalValue(valueJSON); err != nil {
		return nil, repositories.Database("decode property", err)
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

	valueJSON, err := prop.MarshalValue()
	if err != nil {
		return repositories.Validation(err)
	}

	now := time.Now().UTC()
	query, args, err := r.sb.
		Insert("properties").
		Columns("org_id", "entity_type", "entity_id", "name", "value", "value_type", "created_at", "updated_at").
		Values(orgID, string(prop.EntityType), prop.EntityID, prop.Name, valueJSON, string(valueType), now, now).
		Suffix("ON CONFLICT (org_id, entity_type, entity_id, name) DO UPDATE SET value = excluded.value, value_type = excluded.value_type, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return repositories.Database("build set property", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("set property", err)
	}

	prop.UpdatedAt = now
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, orgID string, entityType entities.EntityType, entityID string, name string) (bool, error) {
	query, args, err := r.sb.
		Delete("properties").
		Where(sq.Eq{
			"org_id":      orgID,
			"entity_type": string(entityType),
			"entity_id":   entityID,
			"name":        name,
		}).
		ToSql()
	if err != nil {
		return false, repositories.Database("build delete property", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, repositories.Database("delete property", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repositories.Database("delete property", err)
	}
	return n > 0, nil
}

func (r *propertyRepository) List(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) ([]*entities.Property, error) {
	query, args, err := r.sb.
		Select("name", "value", "value_type", "created_at", "updated_at").
		From("properties").
		Where(sq.Eq{
			"org_id":      orgID,
			"entity_type": string(entityType),
			"entity_id":   entityID,
		}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, repositories.Database("build list properties", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.Database("list properties", err)
	}
	defer rows.Close()

	var props []*entities.Property
	for rows.Next() {
		prop := entities.Property{EntityType: entityType, EntityID: entityID}
		var valueJSON, valueType string
		if err := rows.Scan(&prop.Name, &valueJSON, &valueType, &prop.CreatedAt, &prop.UpdatedAt); err != nil {
			return nil, repositories.Database("scan property", err)
		}
		prop.ValueType = entities.ValueType(valueType)
		if err := prop.UnmarshalValue(valueJSON); err != nil {
			return nil, repositories.Database("decode property", err)
		}
		props = append(props, &prop)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.Database("iterate properties", err)
	}
	return props, nil
}

func (r *propertyRepository) DeleteByEntity(ctx context.Context, orgID string, entityType entities.EntityType, entityID string) error {
	query, args, err := r.sb.
		Delete("properties").
		Where(sq.Eq{
			"org_id":      orgID,
			"entity_type": string(entityType),
			"entity_id":   entityID,
		}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete entity properties", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete entity properties", err)
	}
	return nil
}

func (r *propertyRepository) DeleteByOrg(ctx context.Context, orgID string) error {
	query, args, err := r.sb.
		Delete("properties").
		Where(sq.Eq{"org_id": orgID}).
		ToSql()
	if err != nil {
		return repositories.Database("build delete org properties", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return repositories.Database("delete org properties", err)
	}
	return nil
}
