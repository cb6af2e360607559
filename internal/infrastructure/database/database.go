package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/torii-auth/torii/internal/infrastructure/config"
)

// DB wraps a database/sql connection together with its driver name.
type DB struct {
	DB     *sql.DB
	Driver string
}

// Connect opens a connection for the configured driver.
func Connect(cfg *config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(cfg)
	case "sqlite3":
		return NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// RunMigrations runs database migrations from the given directory.
func (d *DB) RunMigrations(migrationsPath string) error {
	driver, err := d.migrateDriver()
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		d.Driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Migrator returns a migrate instance bound to this connection.
// The migrate CLI uses it for up/down/goto/version operations.
func (d *DB) Migrator(migrationsPath string) (*migrate.Migrate, error) {
	driver, err := d.migrateDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		d.Driver,
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

func (d *DB) migrateDriver() (database.Driver, error) {
	switch d.Driver {
	case "postgres":
		return postgresMigrateDriver(d.DB)
	case "sqlite3":
		return sqliteMigrateDriver(d.DB)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", d.Driver)
	}
}

// HealthCheck checks if the database connection is healthy
func (d *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
