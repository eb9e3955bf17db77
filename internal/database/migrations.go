package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations are applied in order; each statement must be idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		query_id TEXT NOT NULL,
		type TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		content TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_query_id ON activities (query_id)`,
	`CREATE TABLE IF NOT EXISTS queries (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		result_count INTEGER NOT NULL,
		query_type TEXT NOT NULL,
		query_text TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queries_text_type ON queries (query_text, query_type)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	logger.Info("ensuring database schema", "statements", len(migrations))

	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}

	return nil
}
