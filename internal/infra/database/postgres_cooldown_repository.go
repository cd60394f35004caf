package database

import (
	"context"
	"database/sql"
	"fmt"
)

const lastNotifiedKey = "last_notified_at"

// PostgresCooldownRepository stores the cooldown record as one row of a
// key/value table so several notifier deployments can share a database.
type PostgresCooldownRepository struct {
	db  *sql.DB
	key string
}

func NewPostgresCooldownRepository(db *sql.DB, namespace string) *PostgresCooldownRepository {
	key := lastNotifiedKey
	if namespace != "" {
		key = namespace + ":" + lastNotifiedKey
	}
	return &PostgresCooldownRepository{db: db, key: key}
}

// EnsureSchema creates the state table when it does not exist yet.
func (r *PostgresCooldownRepository) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS notifier_state (
               key        VARCHAR(128) PRIMARY KEY,
               value      TEXT NOT NULL,
               updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
           )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating notifier_state table: %w", err)
	}
	return nil
}

func (r *PostgresCooldownRepository) LoadLastNotified(ctx context.Context) (string, bool, error) {
	query := `SELECT value FROM notifier_state WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, r.key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error getting cooldown record: %w", err)
	}
	return value, true, nil
}

func (r *PostgresCooldownRepository) SaveLastNotified(ctx context.Context, value string) error {
	query := `INSERT INTO notifier_state (key, value, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, r.key, value); err != nil {
		return fmt.Errorf("error saving cooldown record: %w", err)
	}
	return nil
}
