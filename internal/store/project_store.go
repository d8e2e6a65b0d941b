package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-extension/internal/model"
)

// DefaultLimit is the page size used when a filter leaves Limit unset.
const DefaultLimit = 50

// ProjectFilter controls filtering and pagination for project queries.
type ProjectFilter struct {
	Query  *string // search name + description
	Limit  int
	Offset int
}

const projectColumns = "id, name, description, created_at, updated_at"

// ProjectRepo manages one user's projects.
type ProjectRepo struct {
	db *ScopedDB
}

// NewProjectRepo returns a ProjectRepo over db.
func NewProjectRepo(db *ScopedDB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// List returns projects ordered by name.
func (r *ProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	conditions := []string{"user_id = ?"}
	args := []any{r.db.UserID()}

	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		conditions = append(conditions,
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`)
		q := likePattern(strings.TrimSpace(*filter.Query))
		args = append(args, q, q)
	}

	query := "SELECT " + projectColumns + " FROM projects WHERE " +
		strings.Join(conditions, " AND ") +
		" ORDER BY LOWER(name), name, id" + pageClause(filter.Limit, filter.Offset)

	rows, err := r.db.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, scanProject(row))
	}
	return projects, nil
}

// Get retrieves a single project by ID.
func (r *ProjectRepo) Get(ctx context.Context, id string) (*model.Project, error) {
	row, err := r.db.queryOne(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ? AND user_id = ?",
		id, r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	if row == nil {
		return nil, notFound("project", id)
	}
	p := scanProject(row)
	return &p, nil
}

// Exists reports whether the project belongs to this user.
func (r *ProjectRepo) Exists(ctx context.Context, id string) (bool, error) {
	row, err := r.db.queryOne(ctx,
		"SELECT id FROM projects WHERE id = ? AND user_id = ?", id, r.db.UserID())
	if err != nil {
		return false, fmt.Errorf("checking project %s: %w", id, err)
	}
	return row != nil, nil
}

// Upsert merges in into the project with id, or creates it. An empty id
// always creates a project with a generated ID.
func (r *ProjectRepo) Upsert(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	now := time.Now().UTC()

	if id != "" {
		existing, err := r.Get(ctx, id)
		if err == nil {
			p := *existing
			if in.Name.Set {
				if strings.TrimSpace(in.Name.Value) == "" {
					return nil, required("name")
				}
				p.Name = in.Name.Value
			}
			if in.Description.Set {
				p.Description = in.Description.Value
			}
			p.UpdatedAt = now

			_, err := r.db.Execute(ctx,
				"UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ? AND user_id = ?",
				p.Name, nullableString(p.Description), formatTime(p.UpdatedAt), p.ID, r.db.UserID())
			if err != nil {
				return nil, fmt.Errorf("updating project %s: %w", id, err)
			}
			return &p, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	if !in.Name.Set || strings.TrimSpace(in.Name.Value) == "" {
		return nil, required("name")
	}
	if id == "" {
		id = uuid.New().String()
	} else if err := r.db.claimID(ctx, "projects", id); err != nil {
		return nil, err
	}

	p := model.Project{
		ID:          id,
		Name:        in.Name.Value,
		Description: in.Description.Value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.Execute(ctx, `
		INSERT INTO projects (id, name, description, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullableString(p.Description),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), r.db.UserID(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &p, nil
}

// Delete removes a project. Its todos move to the "No Project" group and its
// collapse state is dropped. Returns false when the project does not exist.
func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	userID := r.db.UserID()
	if _, err := r.db.Execute(ctx,
		"UPDATE todos SET project_id = NULL, updated_at = ? WHERE project_id = ? AND user_id = ?",
		formatTime(time.Now()), id, userID); err != nil {
		return false, fmt.Errorf("detaching todos from project %s: %w", id, err)
	}
	if _, err := r.db.Execute(ctx,
		"DELETE FROM group_state WHERE group_id = ? AND user_id = ?", id, userID); err != nil {
		return false, fmt.Errorf("deleting group state for project %s: %w", id, err)
	}
	if _, err := r.db.Execute(ctx,
		"DELETE FROM projects WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return false, fmt.Errorf("deleting project %s: %w", id, err)
	}
	return true, nil
}

func scanProject(row Row) model.Project {
	return model.Project{
		ID:          row.String("id"),
		Name:        row.String("name"),
		Description: row.NullString("description"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}
}

// pageClause renders LIMIT/OFFSET, defaulting the limit to DefaultLimit.
func pageClause(limit, offset int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	clause := fmt.Sprintf(" LIMIT %d", limit)
	if offset > 0 {
		clause += fmt.Sprintf(" OFFSET %d", offset)
	}
	return clause
}
