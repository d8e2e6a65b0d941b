package store

import (
	"context"
	"fmt"
)

// ScopedDB binds an Executor to one user. Repositories built on it filter
// and tag every row with UserID.
type ScopedDB struct {
	exec   Executor
	userID string
	schema *Schema
}

// NewScopedDB returns a ScopedDB for userID sharing schema with its siblings.
func NewScopedDB(exec Executor, userID string, schema *Schema) *ScopedDB {
	if schema == nil {
		schema = &Schema{}
	}
	return &ScopedDB{exec: exec, userID: userID, schema: schema}
}

// UserID returns the identity every query is scoped to.
func (d *ScopedDB) UserID() string { return d.userID }

// Execute passes the statement through to the executor.
func (d *ScopedDB) Execute(ctx context.Context, query string, args ...any) ([]Row, error) {
	return d.exec.Execute(ctx, query, args...)
}

// Initialize sets up the schema once per underlying connection.
func (d *ScopedDB) Initialize(ctx context.Context) error {
	return d.schema.Ensure(ctx, d.exec)
}

// queryOne runs query and returns its first row, or nil when there is none.
func (d *ScopedDB) queryOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := d.exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// exists reports whether table holds a row with id owned by this user.
func (d *ScopedDB) exists(ctx context.Context, table, id string) (bool, error) {
	row, err := d.queryOne(ctx,
		"SELECT id FROM "+table+" WHERE id = ? AND user_id = ?", id, d.userID)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// claimID fails with a validation error when any user already owns id in
// table. Rows of other users stay invisible; only the conflict is reported.
func (d *ScopedDB) claimID(ctx context.Context, table, id string) error {
	row, err := d.queryOne(ctx, "SELECT id FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("checking %s id %s: %w", table, id, err)
	}
	if row != nil {
		return invalid("id", "id already in use")
	}
	return nil
}
