package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/pomoyka/pomoyka-client/internal/session"
	"github.com/pomoyka/pomoyka-client/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenRepository(t *testing.T) (*TokenRepository, sqlmock.Sqlmock, *utils.Sealer) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sealer, err := utils.NewSealer("test-store-key")
	require.NoError(t, err)

	return NewTokenRepository(sqlx.NewDb(mockDB, "sqlmock"), sealer), mock, sealer
}

func TestTokenRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, sealer := setupTokenRepository(t)
		sealed, err := sealer.Seal(session.AccessTokenKey, "A1")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT value FROM secure_store WHERE key = \?`).
			WithArgs(session.AccessTokenKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(sealed))

		value, err := repo.Get(ctx, session.AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "A1", value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing key", func(t *testing.T) {
		repo, mock, _ := setupTokenRepository(t)

		mock.ExpectQuery(`SELECT value FROM secure_store`).
			WithArgs(session.RefreshTokenKey).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, session.RefreshTokenKey)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Value sealed under another key", func(t *testing.T) {
		repo, mock, sealer := setupTokenRepository(t)
		sealed, err := sealer.Seal(session.RefreshTokenKey, "R1")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT value FROM secure_store`).
			WithArgs(session.AccessTokenKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(sealed))

		_, err = repo.Get(ctx, session.AccessTokenKey)
		assert.ErrorIs(t, err, utils.ErrSealedValueCorrupt)
	})

	t.Run("Database Error", func(t *testing.T) {
		repo, mock, _ := setupTokenRepository(t)

		mock.ExpectQuery(`SELECT value FROM secure_store`).
			WillReturnError(fmt.Errorf("database is locked"))

		_, err := repo.Get(ctx, session.AccessTokenKey)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})
}

func TestTokenRepository_SetAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Set upserts a sealed value", func(t *testing.T) {
		repo, mock, _ := setupTokenRepository(t)

		mock.ExpectExec(`INSERT INTO secure_store .* ON CONFLICT \(key\) DO UPDATE`).
			WithArgs(session.AccessTokenKey, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Set(ctx, session.AccessTokenKey, "A1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Set failure", func(t *testing.T) {
		repo, mock, _ := setupTokenRepository(t)

		mock.ExpectExec(`INSERT INTO secure_store`).
			WillReturnError(fmt.Errorf("disk full"))

		assert.Error(t, repo.Set(ctx, session.AccessTokenKey, "A1"))
	})

	t.Run("Delete missing key is not an error", func(t *testing.T) {
		repo, mock, _ := setupTokenRepository(t)

		mock.ExpectExec(`DELETE FROM secure_store WHERE key = \?`).
			WithArgs(session.RefreshTokenKey).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.Delete(ctx, session.RefreshTokenKey))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	db, err := NewConnection(config.StoreConfig{Driver: "sqlite", DSN: path, Key: "k"})
	require.NoError(t, err)
	defer db.Close()

	sealer, err := utils.NewSealer("k")
	require.NoError(t, err)
	repo := NewTokenRepository(db, sealer)

	_, err = repo.Get(ctx, session.AccessTokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, repo.Set(ctx, session.AccessTokenKey, "first-access-token"))
	require.NoError(t, repo.Set(ctx, session.AccessTokenKey, "second-access-token"))

	value, err := repo.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "second-access-token", value)

	var raw string
	require.NoError(t, db.Get(&raw, `SELECT value FROM secure_store WHERE key = ?`, session.AccessTokenKey))
	assert.NotContains(t, raw, "second-access-token")

	require.NoError(t, repo.Delete(ctx, session.AccessTokenKey))
	require.NoError(t, repo.Delete(ctx, session.AccessTokenKey))
	_, err = repo.Get(ctx, session.AccessTokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Reopening runs migrations again without error
	again, err := NewConnection(config.StoreConfig{Driver: "sqlite", DSN: path, Key: "k"})
	require.NoError(t, err)
	again.Close()
}

func TestNewConnection_Validation(t *testing.T) {
	_, err := NewConnection(config.StoreConfig{Driver: "sqlite"})
	assert.Error(t, err)

	_, err = NewConnection(config.StoreConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestTokenRepository_Purge(t *testing.T) {
	ctx := context.Background()
	repo, mock, _ := setupTokenRepository(t)

	mock.ExpectExec(`DELETE FROM secure_store`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM secure_store`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	removed, err := repo.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
