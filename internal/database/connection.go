package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB defines the database operations the repositories use. *sqlx.DB
// satisfies it.
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
	Ping() error
	Close() error
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewConnection opens the token store database and brings its schema up to date
func NewConnection(cfg config.StoreConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("token store DSN is required")
	}

	var (
		driver  string
		dialect string
		dsn     = cfg.DSN
	)
	switch cfg.Driver {
	case "sqlite":
		driver, dialect = "sqlite", "sqlite3"
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	case "postgres":
		driver, dialect = "postgres", "postgres"
	default:
		return nil, fmt.Errorf("unsupported token store driver: %s", cfg.Driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to token store: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db.DB, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate token store: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// ensureDir creates the parent directory of a file DSN
func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token store directory: %w", err)
	}
	return nil
}
