package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SyncStateRepository persists resumable stream cursors.
type SyncStateRepository struct {
	db *sqlx.DB
}

func NewSyncStateRepository(db *sqlx.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

const syncStateGetQuery = `SELECT value FROM sync_state WHERE key = $1`

const syncStateSetQuery = `
INSERT INTO sync_state (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = NOW()`

func (r *SyncStateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, syncStateGetQuery, key); err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get sync state %q: %w", key, err)
	}
	return value, nil
}

func (r *SyncStateRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, syncStateSetQuery, key, value); err != nil {
		return fmt.Errorf("set sync state %q: %w", key, err)
	}
	return nil
}
