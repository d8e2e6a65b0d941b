package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/todo-extension/internal/model"
)

// column is a column that older databases may lack.
type column struct {
	name string
	ddl  string
}

// scopedTables lists every table that carries a user_id column.
var scopedTables = []string{"projects", "todos", "subitems", "comments", "settings", "group_state"}

// createTables creates every table with its current shape. Existing tables
// are left alone; missing columns are added by requiredColumns.
var createTables = []string{
	`CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS todos (
	id               TEXT PRIMARY KEY,
	project_id       TEXT,
	title            TEXT NOT NULL,
	description      TEXT,
	icon             TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'not_started',
	due_at           TEXT NOT NULL DEFAULT '',
	date             TEXT NOT NULL DEFAULT '',
	time             TEXT NOT NULL DEFAULT '',
	all_day          INTEGER NOT NULL DEFAULT 0,
	reminder_minutes INTEGER,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	user_id          TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS subitems (
	id           TEXT PRIMARY KEY,
	todo_id      TEXT NOT NULL,
	text         TEXT NOT NULL,
	completed_at TEXT,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	user_id      TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	todo_id    TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	user_id    TEXT NOT NULL DEFAULT ''
)`,
	fmt.Sprintf(settingsTable, "settings"),
	fmt.Sprintf(groupStateTable, "group_state"),
}

const settingsTable = `CREATE TABLE IF NOT EXISTS %s (
	key        TEXT NOT NULL,
	value      TEXT,
	user_id    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL,
	PRIMARY KEY (user_id, key)
)`

const groupStateTable = `CREATE TABLE IF NOT EXISTS %s (
	group_id   TEXT NOT NULL,
	collapsed  INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	user_id    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (user_id, group_id)
)`

// rekey describes a table whose primary key gained user_id. Older databases
// keyed these tables by their first column alone.
type rekey struct {
	table   string
	ddl     string
	columns string
}

var rekeyedTables = []rekey{
	{table: "settings", ddl: settingsTable, columns: "key, value, user_id, updated_at"},
	{table: "group_state", ddl: groupStateTable, columns: "group_id, collapsed, updated_at, user_id"},
}

// requiredColumns are added with ALTER TABLE when a table predates them.
var requiredColumns = map[string][]column{
	"projects": {
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"todos": {
		{"date", "TEXT NOT NULL DEFAULT ''"},
		{"time", "TEXT NOT NULL DEFAULT ''"},
		{"all_day", "INTEGER NOT NULL DEFAULT 0"},
		{"reminder_minutes", "INTEGER"},
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"subitems": {
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"comments": {
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"settings": {
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"group_state": {
		{"user_id", "TEXT NOT NULL DEFAULT ''"},
	},
}

var createIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, name)",
	"CREATE INDEX IF NOT EXISTS idx_todos_user_due ON todos(user_id, due_at)",
	"CREATE INDEX IF NOT EXISTS idx_todos_user_project ON todos(user_id, project_id)",
	"CREATE INDEX IF NOT EXISTS idx_subitems_user_todo ON subitems(user_id, todo_id)",
	"CREATE INDEX IF NOT EXISTS idx_comments_user_todo ON comments(user_id, todo_id)",
}

// normalizations rewrite legacy values. Every statement is idempotent:
// running it on already-normalized data changes nothing.
var normalizations = []string{
	`UPDATE todos SET status = 'not_started'
	WHERE status IS NULL OR TRIM(status) = '' OR LOWER(status) IN ('todo', 'open', 'not-started', 'notstarted', 'pending')`,
	`UPDATE todos SET status = 'in_progress'
	WHERE LOWER(status) IN ('in-progress', 'inprogress', 'doing', 'started')`,
	`UPDATE todos SET status = 'completed'
	WHERE LOWER(status) IN ('done', 'complete', 'finished')`,
	`UPDATE todos SET status = 'cancelled'
	WHERE LOWER(status) IN ('canceled', 'cancel')`,
	`UPDATE todos SET project_id = NULL
	WHERE project_id IS NOT NULL AND (
		TRIM(project_id) = ''
		OR NOT EXISTS (
			SELECT 1 FROM projects p
			WHERE p.id = todos.project_id AND p.user_id = todos.user_id
		)
	)`,
	`DELETE FROM group_state
	WHERE group_id <> '` + model.NoProjectGroupID + `' AND NOT EXISTS (
		SELECT 1 FROM projects p
		WHERE p.id = group_state.group_id AND p.user_id = group_state.user_id
	)`,
}

// Schema performs idempotent schema setup at most once per Schema value.
// The Store that creates it owns it; every user-scoped view derived from
// that Store shares the same Schema.
type Schema struct {
	mu   sync.Mutex
	done bool
}

// Ensure runs schema setup the first time it is called. A failed run is
// retried on the next call.
func (s *Schema) Ensure(ctx context.Context, exec Executor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil
	}
	if err := Migrate(ctx, exec); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Migrate creates missing tables, columns and indexes, assigns unowned rows
// to the legacy user, rekeys per-user tables and normalizes legacy values.
// It is safe to run any number of times, including on an empty database.
func Migrate(ctx context.Context, exec Executor) error {
	for _, stmt := range createTables {
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}

	for _, table := range scopedTables {
		if err := addMissingColumns(ctx, exec, table, requiredColumns[table]); err != nil {
			return err
		}
	}

	for _, stmt := range createIndexes {
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	for _, table := range scopedTables {
		_, err := exec.Execute(ctx,
			"UPDATE "+table+" SET user_id = ? WHERE user_id IS NULL OR user_id = ''",
			model.LegacyUserID,
		)
		if err != nil {
			return fmt.Errorf("backfilling user_id on %s: %w", table, err)
		}
	}

	for _, rk := range rekeyedTables {
		if err := rebuildKey(ctx, exec, rk); err != nil {
			return err
		}
	}

	for i, stmt := range normalizations {
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("applying normalization %d: %w", i+1, err)
		}
	}

	return nil
}

// rebuildKey recreates rk.table with a (user_id, ...) primary key when the
// existing key does not include user_id. Rows are copied unchanged.
func rebuildKey(ctx context.Context, exec Executor, rk rekey) error {
	rows, err := exec.Execute(ctx, "SELECT name FROM pragma_table_info('"+rk.table+"') WHERE pk > 0")
	if err != nil {
		return fmt.Errorf("inspecting %s primary key: %w", rk.table, err)
	}
	for _, r := range rows {
		if r.String("name") == "user_id" {
			return nil
		}
	}

	next := rk.table + "_rekeyed"
	stmts := []string{
		"DROP TABLE IF EXISTS " + next,
		fmt.Sprintf(rk.ddl, next),
		fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) SELECT %s FROM %s", next, rk.columns, rk.columns, rk.table),
		"DROP TABLE " + rk.table,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", next, rk.table),
	}
	for _, stmt := range stmts {
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("rebuilding %s key: %w", rk.table, err)
		}
	}
	return nil
}

// addMissingColumns adds every column in cols that table does not yet have.
func addMissingColumns(ctx context.Context, exec Executor, table string, cols []column) error {
	rows, err := exec.Execute(ctx, "SELECT name FROM pragma_table_info('"+table+"')")
	if err != nil {
		return fmt.Errorf("inspecting %s columns: %w", table, err)
	}

	existing := make(map[string]bool, len(rows))
	for _, r := range rows {
		existing[r.String("name")] = true
	}

	for _, c := range cols {
		if existing[c.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, c.name, c.ddl)
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("adding %s.%s: %w", table, c.name, err)
		}
	}
	return nil
}
