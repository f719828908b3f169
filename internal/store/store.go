// Package store owns the SQLite database handle: opening with the
// required pragmas, optional eager table creation from entity
// descriptors, and raw row-to-struct mapping for ad-hoc SQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finchdb/finch/internal/schema"
)

// Store provides the durable database handle the session manager and
// repositories run on.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, log: slog.With("component", "store")}, nil
}

// OpenURI opens a database from a configuration URI. A "sqlite3://"
// scheme prefix is stripped; anything else is treated as a plain path.
func OpenURI(uri string) (*Store, error) {
	path := strings.TrimPrefix(uri, "sqlite3://")
	if path == "" {
		return nil, fmt.Errorf("empty database URI")
	}
	return Open(path)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for the session manager.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query executes a query outside any transactional scope and returns
// the resulting rows. Callers are responsible for closing them.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// CreateTables eagerly creates one table per descriptor. Idempotent:
// existing tables are left alone. Used when the boot configuration asks
// for eager table creation.
func (s *Store) CreateTables(ctx context.Context, descs []*schema.EntityDescriptor) error {
	for _, desc := range descs {
		ddl, err := createTableDDL(desc)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", desc.Table, err)
		}
		s.log.Debug("table ensured", "table", desc.Table)
	}
	return nil
}

// createTableDDL renders CREATE TABLE IF NOT EXISTS for a descriptor.
func createTableDDL(desc *schema.EntityDescriptor) (string, error) {
	if err := desc.Validate(); err != nil {
		return "", err
	}
	columns := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		col := f.Column + " " + f.SQLType
		if f.IsPrimary {
			// INTEGER PRIMARY KEY aliases the rowid, giving
			// LastInsertId-backed autoincrement ids.
			col += " PRIMARY KEY"
		} else if !f.Nullable {
			col += " NOT NULL"
		}
		columns = append(columns, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		desc.Table, strings.Join(columns, ", ")), nil
}
