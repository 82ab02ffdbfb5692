package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pomoyka/pomoyka-client/internal/session"
	"github.com/pomoyka/pomoyka-client/internal/utils"
)

var _ session.SecureStore = (*TokenRepository)(nil)

// TokenRepository is a session.SecureStore backed by the secure_store
// table. Values are sealed before they reach the database.
type TokenRepository struct {
	db     DB
	sealer *utils.Sealer
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db DB, sealer *utils.Sealer) *TokenRepository {
	return &TokenRepository{
		db:     db,
		sealer: sealer,
	}
}

// Get returns the value stored under key, or session.ErrNotFound
func (r *TokenRepository) Get(ctx context.Context, key string) (string, error) {
	query := r.db.Rebind(`SELECT value FROM secure_store WHERE key = ?`)

	var sealed string
	if err := r.db.GetContext(ctx, &sealed, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", session.ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	value, err := r.sealer.Open(key, sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value
func (r *TokenRepository) Set(ctx context.Context, key, value string) error {
	sealed, err := r.sealer.Seal(key, value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	query := r.db.Rebind(`
		INSERT INTO secure_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)

	if _, err := r.db.ExecContext(ctx, query, key, sealed); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	query := r.db.Rebind(`DELETE FROM secure_store WHERE key = ?`)

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// Count returns the number of stored entries
func (r *TokenRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM secure_store`); err != nil {
		return 0, fmt.Errorf("failed to count stored entries: %w", err)
	}
	return count, nil
}

// Purge removes every stored entry, including values sealed with a previous key
func (r *TokenRepository) Purge(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM secure_store`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge token store: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge token store: %w", err)
	}
	return rows, nil
}
