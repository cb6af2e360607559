package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/torii-auth/torii/internal/entities"
	"github.com/torii-auth/torii/internal/repositories"
)

func newMockSet(t *testing.T, driver string) (*repositories.Set, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	set, err := NewSet(db, driver)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return set, mock
}

func TestNewSet_UnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	if _, err := NewSet(db, "oracle"); err == nil {
		t.Fatal("NewSet(oracle) error = nil, want error")
	}
}

func TestOrganizationRepository_CreateConflictPostgres(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)

	mock.ExpectExec("INSERT INTO organizations").
		WithArgs("acme", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := set.Organizations.Create(context.Background(), &entities.Organization{ID: "acme"})
	if !repositories.IsConflict(err) {
		t.Errorf("Create() error = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestOrganizationRepository_CreateConflictSQLite(t *testing.T) {
	set, mock := newMockSet(t, DriverSQLite)

	mock.ExpectExec("INSERT INTO organizations").
		WithArgs("acme", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: sqlite3.ErrConstraintPrimaryKey,
		})

	err := set.Organizations.Create(context.Background(), &entities.Organization{ID: "acme"})
	if !repositories.IsConflict(err) {
		t.Errorf("Create() error = %v, want conflict", err)
	}
}

func TestOrganizationRepository_CreateDatabaseError(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)

	mock.ExpectExec("INSERT INTO organizations").
		WillReturnError(errors.New("connection reset"))

	err := set.Organizations.Create(context.Background(), &entities.Organization{ID: "acme"})
	if repositories.IsConflict(err) || err == nil {
		t.Errorf("Create() error = %v, want plain database error", err)
	}
}

func TestOrganizationRepository_GetByIDNotFound(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)

	mock.ExpectQuery("SELECT id, created_at, updated_at FROM organizations").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))

	_, err := set.Organizations.GetByID(context.Background(), "ghost")
	if !repositories.IsNotFound(err) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestResourceRepository_ListPrefixQuery(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)

	// The prefix must expand to "exact ID or delimiter-bounded LIKE"
	mock.ExpectQuery(`SELECT id, created_at, updated_at FROM resources WHERE org_id = .+ AND .+id = .+ OR id LIKE .+ ORDER BY id`).
		WithArgs("acme", "a/b", "a/b/%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))

	_, err := set.Resources.List(context.Background(), "acme", &repositories.ResourceFilter{IDPrefix: "a/b"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPermissionRepository_CreateUpsert(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)

	mock.ExpectExec(`INSERT INTO permissions .+ ON CONFLICT .+ DO NOTHING`).
		WithArgs("acme", "user", "alice", "docs", "read", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := set.Permissions.Create(context.Background(), "acme", &entities.Permission{
		SubjectType: entities.SubjectUser,
		SubjectID:   "alice",
		ResourceID:  "docs",
		Action:      "read",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPermissionRepository_AnyMatch(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)
	subjects := []entities.Subject{
		{Type: entities.SubjectUser, ID: "alice"},
		{Type: entities.SubjectRole, ID: "admin"},
	}

	t.Run("match found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT 1 FROM permissions`).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		allowed, err := set.Permissions.AnyMatch(context.Background(), "acme", subjects, "read", []string{"docs/readme", "docs"})
		if err != nil {
			t.Fatalf("AnyMatch() error = %v", err)
		}
		if !allowed {
			t.Errorf("AnyMatch() = false, want true")
		}
	})

	t.Run("no rows is a denial, not an error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT 1 FROM permissions`).
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		allowed, err := set.Permissions.AnyMatch(context.Background(), "acme", subjects, "read", []string{"docs"})
		if err != nil {
			t.Fatalf("AnyMatch() error = %v", err)
		}
		if allowed {
			t.Errorf("AnyMatch() = true, want false")
		}
	})

	t.Run("empty inputs short-circuit", func(t *testing.T) {
		allowed, err := set.Permissions.AnyMatch(context.Background(), "acme", nil, "read", []string{"docs"})
		if err != nil || allowed {
			t.Errorf("AnyMatch(no subjects) = %v, %v, want false, nil", allowed, err)
		}
	})
}

func TestPropertyRepository_SetUpsert(t *testing.T) {
	set, mock := newMockSet(t, DriverSQLite)

	mock.ExpectExec(`INSERT INTO properties .+ ON CONFLICT .+ DO UPDATE SET value = excluded.value`).
		WithArgs("acme", "user", "alice", "department", `"engineering"`, "string", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := set.Properties.Set(context.Background(), "acme", &entities.Property{
		EntityType: entities.EntityUser,
		EntityID:   "alice",
		Name:       "department",
		Value:      "engineering",
	})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTransactor_CommitAndRollback(t *testing.T) {
	set, mock := newMockSet(t, DriverPostgres)
	ctx := context.Background()

	t.Run("commit on success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM permissions").
			WithArgs("acme").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := set.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
			return repos.Permissions.DeleteByOrg(ctx, "acme")
		})
		if err != nil {
			t.Fatalf("WithinTx() error = %v", err)
		}
	})

	t.Run("rollback on failure", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := set.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithinTx() error = %v, want %v", err, boom)
		}
	})

	t.Run("rollback on cancellation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		opCtx, cancel := context.WithCancel(ctx)
		err := set.Tx.WithinTx(ctx, func(repos *repositories.Set) error {
			cancel()
			// The write sees the cancelled context and fails; nothing
			// reaches the database and the transaction unwinds in full.
			return repos.Permissions.DeleteByOrg(opCtx, "acme")
		})
		if !errors.Is(err, repositories.ErrDatabase) {
			t.Fatalf("WithinTx() error = %v, want database kind after cancellation", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
