package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Executor runs one parameterized statement and returns its rows. Statements
// that produce no rows return an empty slice. No transaction primitives are
// exposed.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) ([]Row, error)
}

// SQLExecutor implements Executor over a database/sql handle. It is the
// query executor used when the extension runs outside a host.
type SQLExecutor struct {
	db *sqlx.DB
}

// NewSQLExecutor wraps an existing handle.
func NewSQLExecutor(db *sqlx.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// OpenSQLite opens (or creates) a SQLite database at dbPath and enables WAL
// mode. A single connection is used so that statements are serialized and
// ":memory:" databases are shared by every caller.
func OpenSQLite(dbPath string) (*SQLExecutor, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &SQLExecutor{db: db}, nil
}

// Close closes the underlying database connection.
func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// Execute runs query with positional args.
func (e *SQLExecutor) Execute(ctx context.Context, query string, args ...any) ([]Row, error) {
	if !returnsRows(query) {
		if _, err := e.db.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
		return []Row{}, nil
	}

	rows, err := e.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		result = append(result, Row(m))
	}
	return result, rows.Err()
}

// returnsRows reports whether query yields a result set.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return strings.Contains(q, " RETURNING ")
}
