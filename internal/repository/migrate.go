package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/freightdocs/bol-extractor/db"
)

// NewMigrator builds a migrator over the embedded schema files for the
// connected database.
func NewMigrator(conn *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}

	var drv database.Driver
	switch conn.DriverName() {
	case "sqlite":
		drv, err = migratesqlite.WithInstance(conn.DB, &migratesqlite.Config{})
	case "pgx":
		drv, err = migratepgx.WithInstance(conn.DB, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", conn.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, conn.DriverName(), drv)
	if err != nil {
		return nil, fmt.Errorf("building migrator: %w", err)
	}
	return m, nil
}

// Migrate brings the connected database up to the embedded schema version.
// Already being current is not an error.
func Migrate(conn *sqlx.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := NewMigrator(conn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	logger.Info("database schema current", "version", version, "dirty", dirty)
	return nil
}
