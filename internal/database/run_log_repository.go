package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

// RunLogRepository persists one summary row per ingestion run. The scheduler
// consults it on startup to decide whether a catch-up run is needed, and the
// status surface reads recent history from it.
type RunLogRepository struct {
	db *sql.DB
}

// NewRunLogRepository creates a run log repository.
func NewRunLogRepository(db *sql.DB) *RunLogRepository {
	return &RunLogRepository{db: db}
}

// Store persists a finalized run report summary.
func (r *RunLogRepository) Store(ctx context.Context, report *models.RunReport) error {
	sources, err := json.Marshal(report.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal source reports: %w", err)
	}

	totals := report.Totals()

	query := `
		INSERT INTO ingestion_runs (
			run_id, trigger_kind, state, started_at, finished_at,
			fetched, inserted, updated, skipped_duplicate, failed, sources
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		report.RunID,
		report.Trigger,
		report.State,
		report.StartedAt,
		report.FinishedAt,
		totals.Fetched,
		totals.Inserted,
		totals.Updated,
		totals.SkippedDuplicate,
		totals.Failed,
		sources,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run log: %w", err)
	}

	return nil
}

// LastStartedAt returns when the most recent run started, or the zero time
// when no run has been recorded.
func (r *RunLogRepository) LastStartedAt(ctx context.Context) (time.Time, error) {
	var startedAt time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT started_at FROM ingestion_runs ORDER BY started_at DESC LIMIT 1",
	).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last run: %w", err)
	}

	return startedAt, nil
}

// ListRecent returns up to limit recent run summaries, newest first.
func (r *RunLogRepository) ListRecent(ctx context.Context, limit int) ([]models.RunReport, error) {
	query := `
		SELECT run_id, trigger_kind, state, started_at, finished_at, sources
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run logs: %w", err)
	}
	defer rows.Close()

	var reports []models.RunReport
	for rows.Next() {
		var report models.RunReport
		var sources []byte
		if err := rows.Scan(&report.RunID, &report.Trigger, &report.State,
			&report.StartedAt, &report.FinishedAt, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan run log: %w", err)
		}
		if err := json.Unmarshal(sources, &report.Sources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source reports: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run logs: %w", err)
	}

	return reports, nil
}
