package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// newMigrate builds a migrate instance for the provider over an open pool
func newMigrate(db *sql.DB, provider string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		dir    string
		err    error
	)

	switch provider {
	case "sqlite":
		dir = "sqlite3"
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		dir = "postgres"
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case "mysql":
		dir = "mysql"
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", provider, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dir, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// release frees the dedicated connection the postgres and mysql drivers
// hold. The sqlite3 driver would close the shared pool instead, so it is
// left alone.
func release(m *migrate.Migrate, provider string) {
	if provider == "sqlite" {
		return
	}
	m.Close()
}

// RunMigrations applies every pending migration for the provider
func RunMigrations(db *sql.DB, provider string) error {
	m, err := newMigrate(db, provider)
	if err != nil {
		return err
	}
	defer release(m, provider)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the applied schema version.
// A database with no migrations applied reports version 0.
func MigrationVersion(db *sql.DB, provider string) (uint, bool, error) {
	m, err := newMigrate(db, provider)
	if err != nil {
		return 0, false, err
	}
	defer release(m, provider)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}
