// Package database provides database connectivity and repositories for
// reports, verification records, and the reporter credibility ledger.
// Queries use `?` placeholders rebound per driver so the repositories run
// against PostgreSQL in production and SQLite in tests.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/guardline/report-verifier/internal/config"
)

const (
	// DefaultPingTimeout bounds the startup connectivity check.
	DefaultPingTimeout = 5 * time.Second
)

// NewPostgresConnection creates a new PostgreSQL database connection.
func NewPostgresConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}

// Migrate creates the verifier's tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reporter_credibility (
			reporter_id   TEXT PRIMARY KEY,
			score         INTEGER NOT NULL,
			total_reports INTEGER NOT NULL DEFAULT 0,
			fake_reports  INTEGER NOT NULL DEFAULT 0,
			updated_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id                 TEXT PRIMARY KEY,
			description        TEXT NOT NULL,
			location           TEXT NOT NULL DEFAULT '',
			time_of_occurrence TEXT NOT NULL DEFAULT '',
			reporter_id        TEXT NOT NULL,
			channel            TEXT NOT NULL DEFAULT 'citizen',
			status             TEXT NOT NULL DEFAULT 'Pending',
			submitted_at       TIMESTAMP,
			crime_type         TEXT,
			crime_confidence   REAL,
			crime_reasoning    TEXT,
			extracted_location TEXT,
			extracted_date     TEXT,
			extracted_time     TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS flagged_reports (
			id                 TEXT PRIMARY KEY,
			description        TEXT NOT NULL,
			location           TEXT NOT NULL DEFAULT '',
			time_of_occurrence TEXT NOT NULL DEFAULT '',
			reporter_id        TEXT NOT NULL,
			channel            TEXT NOT NULL DEFAULT 'citizen',
			confidence         REAL NOT NULL,
			reasoning          TEXT NOT NULL,
			tier               TEXT NOT NULL,
			flagged_at         TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS verifications (
			report_id   TEXT PRIMARY KEY,
			is_fake     BOOLEAN NOT NULL,
			confidence  REAL NOT NULL,
			reasoning   TEXT NOT NULL,
			tier        TEXT NOT NULL,
			verified_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
