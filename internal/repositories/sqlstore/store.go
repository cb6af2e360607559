// Package sqlstore implements the repository interfaces on top of a
// relational engine. The same implementation serves PostgreSQL (lib/pq) and
// SQLite (mattn/go-sqlite3): queries are built with squirrel using the
// placeholder format of the active driver and stick to standard DML that both
// engines accept.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/torii-auth/torii/internal/repositories"
)

// Supported driver names, as passed to sql.Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run against either, so the same code serves plain reads and
// transactional cascades.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// NewSet builds a repository set backed by db for the given driver
func NewSet(db *sql.DB, driver string) (*repositories.Set, error) {
	sb, err := builderFor(driver)
	if err != nil {
		return nil, err
	}
	set := newSet(db, sb)
	set.Tx = &transactor{db: db, sb: sb}
	return set, nil
}

func newSet(q queryer, sb sq.StatementBuilderType) *repositories.Set {
	return &repositories.Set{
		Organizations: &organizationRepository{q: q, sb: sb},
		Users:         &userRepository{q: q, sb: sb},
		Roles:         &roleRepository{q: q, sb: sb},
		Resources:     &resourceRepository{q: q, sb: sb},
		Permissions:   &permissionRepository{q: q, sb: sb},
		Properties:    &propertyRepository{q: q, sb: sb},
	}
}

func builderFor(driver string) (sq.StatementBuilderType, error) {
	switch driver {
	case DriverPostgres:
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar), nil
	case DriverSQLite:
		return sq.StatementBuilder.PlaceholderFormat(sq.Question), nil
	}
	return sq.StatementBuilderType{}, fmt.Errorf("unsupported database driver: %q", driver)
}

// transactor runs multi-step operations in a single database transaction.
type transactor struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// WithinTx begins a transaction, hands fn a tx-backed repository set, and
// commits only if fn succeeds. On error or context cancellation the deferred
// rollback undoes every write.
func (t *transactor) WithinTx(ctx context.Context, fn func(repos *repositories.Set) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return repositories.Database("begin transaction", err)
	}
	defer tx.Rollback()

	set := newSet(tx, t.sb)
	set.Tx = &nestedTransactor{set: set}
	if err := fn(set); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return repositories.Database("commit transaction", err)
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

// isUniqueViolation recognizes a duplicate-key failure from either engine
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
