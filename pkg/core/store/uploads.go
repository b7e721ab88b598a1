package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SourcePayloadRepo ingests raw uploaded documents (rent rolls, mortgage
// statements, expense sheets) as per-source payload rows.
// Hybrid vault: DB (primary) + file system (fallback/local), so an upload
// still lands somewhere when the database is down.
type SourcePayloadRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSourcePayloadRepo creates a new payload repository.
// If pool is nil, it falls back to a file-based vault in the specified
// directory; if dir is also empty, it defaults to .cache/uploads.
func NewSourcePayloadRepo(pool *pgxpool.Pool, dir string) *SourcePayloadRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "uploads")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check upload vault dir: %v\n", err)
		}
	}
	return &SourcePayloadRepo{pool: pool, fileDir: dir}
}

// vaultEntry is the file-vault envelope around one payload.
type vaultEntry struct {
	PropertyID string          `json:"property_id"`
	Category   string          `json:"category"`
	Source     string          `json:"source"`
	Payload    json.RawMessage `json:"payload"`
	UploadedAt time.Time       `json:"uploaded_at"`
}

func (r *SourcePayloadRepo) filePath(propertyID, category, src string) string {
	name := fmt.Sprintf("%s_%s.json", strings.ToLower(category), strings.ToLower(src))
	return filepath.Join(r.fileDir, propertyID, name)
}

// Save upserts one payload row, replacing whatever that source previously
// reported for the category. The payload must be valid JSON; shape errors
// beyond that surface later as soft parse faults during bundle loading.
func (r *SourcePayloadRepo) Save(ctx context.Context, propertyID, category, src string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("payload for %s/%s is not valid JSON", propertyID, category)
	}

	// 1. Save to DB
	if r.pool != nil {
		query := `
			INSERT INTO property_sources (property_id, category, source, payload, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (property_id, category, source)
			DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := r.pool.Exec(ctx, query, propertyID, category, src, payload, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to save source payload: %w", err)
		}
	}

	// 2. Save to file (always if configured, or if pool is nil)
	if r.fileDir != "" {
		entry := vaultEntry{
			PropertyID: propertyID,
			Category:   category,
			Source:     src,
			Payload:    json.RawMessage(payload),
			UploadedAt: time.Now().UTC(),
		}
		fileBytes, _ := json.MarshalIndent(entry, "", "  ")

		path := r.filePath(propertyID, category, src)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create vault dir: %w", err)
		}
		if err := os.WriteFile(path, fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to write vault file: %w", err)
		}
	}

	if r.pool == nil && r.fileDir == "" {
		return fmt.Errorf("no payload storage configured")
	}
	return nil
}

// Load returns the stored payload for one property/category/source, or
// (nil, nil) on a miss. DB is authoritative when configured; the file vault
// serves local runs only.
func (r *SourcePayloadRepo) Load(ctx context.Context, propertyID, category, src string) ([]byte, error) {
	// 1. Try DB
	if r.pool != nil {
		query := `
			SELECT payload
			FROM property_sources
			WHERE property_id = $1 AND category = $2 AND source = $3
			LIMIT 1
		`
		var payload []byte
		err := r.pool.QueryRow(ctx, query, propertyID, category, src).Scan(&payload)
		if err != nil {
			return nil, nil // miss
		}
		return payload, nil
	}

	// 2. Try file system
	if r.fileDir != "" {
		data, err := os.ReadFile(r.filePath(propertyID, category, src))
		if err != nil {
			return nil, nil
		}
		var entry vaultEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vault entry: %w", err)
		}
		return entry.Payload, nil
	}

	return nil, nil
}
