package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/validate"
)

// FinancialsRepo persists computed financials snapshots and reads the legacy
// metric rows the old dashboard still maintains.
type FinancialsRepo struct{}

// NewFinancialsRepo creates a new repository instance.
func NewFinancialsRepo() *FinancialsRepo {
	return &FinancialsRepo{}
}

// A single JSONB blob per property keeps the snapshot schema-free; the KPI
// set changes too often for one column per metric.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS financials_snapshots (
//   property_id TEXT PRIMARY KEY,
//   snapshot_id UUID NOT NULL,
//   financials_json JSONB NOT NULL,
//   computed_at TIMESTAMPTZ NOT NULL
// );
//
// legacy_metrics is written by the old dashboard, read-only here:
// CREATE TABLE IF NOT EXISTS legacy_metrics (
//   property_id TEXT PRIMARY KEY,
//   metrics_json JSONB NOT NULL,
//   updated_at TIMESTAMPTZ
// );

// SaveSnapshot upserts the latest computed financials for a property and
// returns the new snapshot id.
func (r *FinancialsRepo) SaveSnapshot(ctx context.Context, fin calc.Financials) (string, error) {
	pool := GetPool()
	if pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(fin)
	if err != nil {
		return "", fmt.Errorf("failed to marshal financials: %w", err)
	}

	snapshotID := uuid.NewString()
	query := `
		INSERT INTO financials_snapshots (property_id, snapshot_id, financials_json, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (property_id)
		DO UPDATE SET
			snapshot_id = EXCLUDED.snapshot_id,
			financials_json = EXCLUDED.financials_json,
			computed_at = EXCLUDED.computed_at;
	`

	if _, err := pool.Exec(ctx, query, fin.PropertyID, snapshotID, jsonData, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to save financials snapshot: %w", err)
	}
	return snapshotID, nil
}

// LoadSnapshot retrieves the last persisted financials for a property.
func (r *FinancialsRepo) LoadSnapshot(ctx context.Context, propertyID string) (*calc.Financials, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT financials_json FROM financials_snapshots WHERE property_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, propertyID).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no financials snapshot for property %s", propertyID)
		}
		return nil, fmt.Errorf("failed to load financials snapshot: %w", err)
	}

	var fin calc.Financials
	if err := json.Unmarshal(jsonData, &fin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal financials snapshot: %w", err)
	}
	return &fin, nil
}

// LegacyMetrics reads the old dashboard's persisted metric row, the baseline
// for drift checks. Returns (nil, nil) when the property has no legacy row.
func (r *FinancialsRepo) LegacyMetrics(ctx context.Context, propertyID string) (*validate.LegacyMetrics, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT metrics_json FROM legacy_metrics WHERE property_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, propertyID).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load legacy metrics: %w", err)
	}

	var legacy validate.LegacyMetrics
	if err := json.Unmarshal(jsonData, &legacy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal legacy metrics: %w", err)
	}
	return &legacy, nil
}
