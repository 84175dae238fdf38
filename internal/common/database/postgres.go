// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"application-wizard/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection holding applications and resume uploads.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pooled connection. sql.Open does not dial; call Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schema is idempotent; applied on startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY,
		job_id TEXT NOT NULL,
		applicant_id TEXT NOT NULL,
		status TEXT NOT NULL,
		payload JSONB NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		UNIQUE (applicant_id, job_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS resume_uploads (
		storage_key UUID PRIMARY KEY,
		applicant_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size_bytes BIGINT NOT NULL,
		content BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the wizard writes to.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
