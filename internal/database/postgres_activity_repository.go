package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sociograph/sociograph/internal/models"
)

// PostgresActivityRepository implements the record store using PostgreSQL.
// Activities and query records are append-only; there is no update or
// delete path.
type PostgresActivityRepository struct {
	db *sql.DB
}

// NewPostgresActivityRepository creates a new PostgreSQL activity repository.
func NewPostgresActivityRepository(db *sql.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// Append saves one activity. Duplicate ids are a caller error and
// surface as a constraint violation.
func (r *PostgresActivityRepository) Append(ctx context.Context, activity models.Activity) error {
	metadataJSON, err := json.Marshal(activity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO activities (id, query_id, type, metadata, content)
		VALUES ($1, $2, $3, $4, $5)
	`, activity.ID, activity.QueryID, activity.Type, metadataJSON, activity.Content)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// AppendBatch saves a fetch cycle's activities in a single transaction,
// so a concurrent reader never observes part of a batch.
func (r *PostgresActivityRepository) AppendBatch(ctx context.Context, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activities (id, query_id, type, metadata, content)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, activity := range activities {
		metadataJSON, err := json.Marshal(activity.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, activity.ID, activity.QueryID, activity.Type, metadataJSON, activity.Content); err != nil {
			return fmt.Errorf("failed to insert activity %s: %w", activity.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// AppendQueryRecord saves the provenance entry for a completed fetch
// cycle. Callers must write the cycle's activities first.
func (r *PostgresActivityRepository) AppendQueryRecord(ctx context.Context, record models.QueryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO queries (id, created_at, result_count, query_type, query_text)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID, record.Timestamp, record.ResultCount, record.QueryType, record.QueryText)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	return nil
}

// FindQueryRecords returns all query records matching the logical query,
// in insertion order.
func (r *PostgresActivityRepository) FindQueryRecords(ctx context.Context, queryText, queryType string) ([]models.QueryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, result_count, query_type, query_text
		FROM queries
		WHERE query_text = $1 AND query_type = $2
		ORDER BY seq
	`, queryText, queryType)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var record models.QueryRecord
		if err := rows.Scan(&record.ID, &record.Timestamp, &record.ResultCount, &record.QueryType, &record.QueryText); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate query records: %w", err)
	}

	return records, nil
}

// FindActivitiesByQueryID returns all activities persisted by a single
// fetch cycle, reconstructed with their stored metadata and content.
func (r *PostgresActivityRepository) FindActivitiesByQueryID(ctx context.Context, queryID string) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, query_id, type, metadata, content
		FROM activities
		WHERE query_id = $1
	`, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var metadataJSON []byte
		if err := rows.Scan(&activity.ID, &activity.QueryID, &activity.Type, &metadataJSON, &activity.Content); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &activity.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for activity %s: %w", activity.ID, err)
			}
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}
