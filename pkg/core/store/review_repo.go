package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"property_dashboard/pkg/core/validate"
)

// ReviewRepo persists drift reports whose checks exceeded tolerance, the
// operator review queue behind consistency warnings. Reports never block a
// calculation; they only land here.
type ReviewRepo struct {
	pool *pgxpool.Pool
}

// NewReviewRepo creates a new review repository.
func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Schema assumption:
// CREATE TABLE IF NOT EXISTS drift_reviews (
//   id BIGSERIAL PRIMARY KEY,
//   property_id TEXT NOT NULL,
//   report_json JSONB NOT NULL,
//   resolved BOOLEAN NOT NULL DEFAULT FALSE,
//   created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//   UNIQUE (property_id, resolved) WHERE NOT resolved  -- one open report per property
// );

// SaveReport stores a drift report for review and returns its row id. A
// property's open report is replaced, so the queue holds at most one entry
// per property until an operator resolves it.
func (r *ReviewRepo) SaveReport(ctx context.Context, report *validate.DriftReport) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database pool not configured")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal drift report: %w", err)
	}

	// Clear the previous open report, then insert the fresh one.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin review tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM drift_reviews WHERE property_id = $1 AND NOT resolved`,
		report.PropertyID,
	); err != nil {
		return 0, fmt.Errorf("failed to clear open report: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO drift_reviews (property_id, report_json)
		VALUES ($1, $2)
		RETURNING id`,
		report.PropertyID, reportJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save drift report: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit review tx: %w", err)
	}
	return id, nil
}

// OpenReports lists the unresolved drift reports, oldest first.
func (r *ReviewRepo) OpenReports(ctx context.Context) ([]validate.DriftReport, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT report_json
		FROM drift_reviews
		WHERE NOT resolved
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drift reports: %w", err)
	}
	defer rows.Close()

	var out []validate.DriftReport
	for rows.Next() {
		var reportJSON []byte
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan drift report: %w", err)
		}
		var report validate.DriftReport
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal drift report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drift reports: %w", err)
	}
	return out, nil
}

// Resolve marks a property's open report as handled.
func (r *ReviewRepo) Resolve(ctx context.Context, propertyID string) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	if _, err := r.pool.Exec(ctx,
		`UPDATE drift_reviews SET resolved = TRUE WHERE property_id = $1 AND NOT resolved`,
		propertyID,
	); err != nil {
		return fmt.Errorf("failed to resolve drift report: %w", err)
	}
	return nil
}
