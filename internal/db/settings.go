package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingRepository stores configuration values that can be
// overridden per page. A row with an empty page_unique_id is the
// global value; Get prefers a page-scoped row when one exists.
type SettingRepository struct {
	db *DB
}

func NewSettingRepository(db *DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get looks up a setting for the given page, falling back to the
// global value. Returns ErrNotFound when neither exists.
func (r *SettingRepository) Get(ctx context.Context, key, pageUniqueID string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings
		 WHERE key = ? AND page_unique_id IN (?, '')
		 ORDER BY page_unique_id DESC LIMIT 1`,
		key, pageUniqueID,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// Set writes a setting. An empty pageUniqueID sets the global value.
func (r *SettingRepository) Set(ctx context.Context, key, pageUniqueID, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, page_unique_id, value) VALUES (?, ?, ?)
		 ON CONFLICT (key, page_unique_id) DO UPDATE SET value = excluded.value`,
		key, pageUniqueID, value,
	)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}
