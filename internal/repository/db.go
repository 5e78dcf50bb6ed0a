// Package repository persists extraction jobs and their finished records.
// It speaks both PostgreSQL (pgx) and SQLite (modernc, pure Go), which keeps
// production deployments and local one-off runs on the same code path.
package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	ErrJobNotFound    = errors.New("repository: job not found")
	ErrRecordNotFound = errors.New("repository: record not found")
)

type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string

	MaxOpen int
	MaxIdle int
}

// Queries are written with "?" placeholders and rebound per driver, so both
// backends share the same statements.
func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Connect opens the configured database and applies pool limits.
func Connect(cfg Config, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, err := normalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}

	if driver == "sqlite" && strings.Contains(cfg.DSN, ":memory:") {
		// An in-memory SQLite database exists per connection; more than one
		// open connection would each see their own empty schema.
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpen > 0 {
			db.SetMaxOpenConns(cfg.MaxOpen)
		}
		if cfg.MaxIdle > 0 {
			db.SetMaxIdleConns(cfg.MaxIdle)
		}
	}

	logger.Info("connected to database", "driver", driver)
	return db, nil
}

// normalizeDriver maps the configured name onto the registered sql driver.
func normalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}
