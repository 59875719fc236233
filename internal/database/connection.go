package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/matthieukhl/shopstats/internal/config"
)

// DB is a handle on the e-commerce store. It holds no cursor or connection
// of its own; queries run inside sessions. Only the fixture helpers write.
type DB struct {
	*sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewConnection opens the configured store and checks that it answers
func NewConnection(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if dialect.Name == config.DriverSQLite {
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("failed to prepare database file: %w: %w", analytics.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open(dialect.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", analytics.ErrStoreUnavailable, err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w: %w", analytics.ErrStoreUnavailable, err)
	}

	return Wrap(db, dialect, logger), nil
}

// ensureSQLiteDir creates the parent directory of a file-backed sqlite DSN
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Wrap adopts an already opened *sql.DB
func Wrap(db *sql.DB, dialect Dialect, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{DB: db, dialect: dialect, logger: logger}
}

// Dialect returns the store dialect
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// HealthCheck performs a simple health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", analytics.ErrStoreUnavailable, err)
	}
	return nil
}

// WithSession acquires a dedicated connection, runs fn with it and always
// releases the connection afterwards.
func (db *DB) WithSession(ctx context.Context, fn func(*Session) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w: %w", analytics.ErrStoreUnavailable, err)
	}
	defer func() { _ = conn.Close() }()

	s := &Session{
		ID:      uuid.NewString(),
		dialect: db.dialect,
		conn:    conn,
	}
	s.logger = db.logger.With("session", s.ID)
	s.logger.Debug("session opened", "driver", db.dialect.Name)
	defer s.logger.Debug("session closed")

	return fn(s)
}
