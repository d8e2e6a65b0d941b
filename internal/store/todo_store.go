package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-extension/internal/model"
)

// reminderSuppressed is stored in reminder_minutes for an explicit null
// override. A NULL column means the user default applies.
const reminderSuppressed = -1

// TodoFilter controls filtering and pagination for todo queries.
type TodoFilter struct {
	Query     *string // search title + description
	ProjectID *string // project id, "none" (NULL project_id), or nil (all)
	Status    *string
	Limit     int
	Offset    int
}

const todoColumns = `id, project_id, title, description, icon, status, due_at, date, time,
	all_day, reminder_minutes, created_at, updated_at`

// TodoRepo manages one user's todos.
type TodoRepo struct {
	db       *ScopedDB
	projects *ProjectRepo
	subitems *SubItemRepo
	comments *CommentRepo
}

// NewTodoRepo returns a TodoRepo over db. Children are loaded through the
// given subitem and comment repositories.
func NewTodoRepo(db *ScopedDB, projects *ProjectRepo, subitems *SubItemRepo, comments *CommentRepo) *TodoRepo {
	return &TodoRepo{db: db, projects: projects, subitems: subitems, comments: comments}
}

// List returns todos ordered by due timestamp, each with its comments and
// subitems.
func (r *TodoRepo) List(ctx context.Context, filter TodoFilter) ([]model.Todo, error) {
	query, args := buildTodoQuery(r.db.UserID(), filter)

	rows, err := r.db.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	todos := make([]model.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, scanTodo(row))
	}

	for i := range todos {
		if err := r.loadChildren(ctx, &todos[i]); err != nil {
			return nil, err
		}
	}
	return todos, nil
}

// Get retrieves a single todo by ID, including its comments and subitems.
func (r *TodoRepo) Get(ctx context.Context, id string) (*model.Todo, error) {
	row, err := r.db.queryOne(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND user_id = ?",
		id, r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	if row == nil {
		return nil, notFound("todo", id)
	}

	todo := scanTodo(row)
	if err := r.loadChildren(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Exists reports whether the todo belongs to this user.
func (r *TodoRepo) Exists(ctx context.Context, id string) (bool, error) {
	row, err := r.db.queryOne(ctx,
		"SELECT id FROM todos WHERE id = ? AND user_id = ?", id, r.db.UserID())
	if err != nil {
		return false, fmt.Errorf("checking todo %s: %w", id, err)
	}
	return row != nil, nil
}

// Upsert merges in into the todo with id, or creates it. Creation requires
// title, icon and status.
func (r *TodoRepo) Upsert(ctx context.Context, id string, in model.TodoInput) (*model.Todo, error) {
	if err := r.validateInput(ctx, in); err != nil {
		return nil, err
	}

	if id != "" {
		existing, err := r.Get(ctx, id)
		if err == nil {
			return r.update(ctx, existing, in)
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return r.create(ctx, id, in)
}

func (r *TodoRepo) validateInput(ctx context.Context, in model.TodoInput) error {
	if in.Title.Set && strings.TrimSpace(in.Title.Value) == "" {
		return required("title")
	}
	if in.Icon.Set && strings.TrimSpace(in.Icon.Value) == "" {
		return required("icon")
	}
	if in.Status.Set && !model.ValidTodoStatus(in.Status.Value) {
		return invalid("status", "status must be one of %s", strings.Join(model.TodoStatuses, ", "))
	}
	if in.ReminderMinutes.Set && in.ReminderMinutes.Value != nil && *in.ReminderMinutes.Value < 0 {
		return invalid("reminderMinutes", "reminderMinutes must not be negative")
	}
	if pid := normalizeProjectID(in.ProjectID.Value); in.ProjectID.Set && pid != nil {
		ok, err := r.projects.Exists(ctx, *pid)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("projectId", "project %s not found", *pid)
		}
	}
	return nil
}

func (r *TodoRepo) create(ctx context.Context, id string, in model.TodoInput) (*model.Todo, error) {
	switch {
	case !in.Title.Set:
		return nil, required("title")
	case !in.Icon.Set:
		return nil, required("icon")
	case !in.Status.Set:
		return nil, required("status")
	}
	if id == "" {
		id = uuid.New().String()
	} else if err := r.db.claimID(ctx, "todos", id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	todo := model.Todo{
		ID:              id,
		ProjectID:       normalizeProjectID(in.ProjectID.Value),
		Title:           in.Title.Value,
		Description:     in.Description.Value,
		Icon:            in.Icon.Value,
		Status:          in.Status.Value,
		DueAt:           strings.TrimSpace(in.DueAt.Value),
		AllDay:          in.AllDay.Value,
		ReminderMinutes: in.ReminderMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
		Comments:        []model.Comment{},
		SubItems:        []model.SubItem{},
	}
	todo.Date, todo.Time = DeriveDateTime(todo.DueAt, optionalPtr(in.Date), optionalPtr(in.Time), todo.AllDay)

	_, err := r.db.Execute(ctx, `
		INSERT INTO todos (
			id, project_id, title, description, icon, status,
			due_at, date, time, all_day, reminder_minutes,
			created_at, updated_at, user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, nullableString(todo.ProjectID), todo.Title, nullableString(todo.Description),
		todo.Icon, todo.Status, todo.DueAt, todo.Date, todo.Time, boolToInt(todo.AllDay),
		encodeReminder(todo.ReminderMinutes), formatTime(todo.CreatedAt), formatTime(todo.UpdatedAt),
		r.db.UserID(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}
	return &todo, nil
}

func (r *TodoRepo) update(ctx context.Context, existing *model.Todo, in model.TodoInput) (*model.Todo, error) {
	todo := *existing

	if in.ProjectID.Set {
		todo.ProjectID = normalizeProjectID(in.ProjectID.Value)
	}
	if in.Title.Set {
		todo.Title = in.Title.Value
	}
	if in.Description.Set {
		todo.Description = in.Description.Value
	}
	if in.Icon.Set {
		todo.Icon = in.Icon.Value
	}
	if in.Status.Set {
		todo.Status = in.Status.Value
	}
	if in.DueAt.Set {
		todo.DueAt = strings.TrimSpace(in.DueAt.Value)
	}
	if in.AllDay.Set {
		todo.AllDay = in.AllDay.Value
	}
	if in.ReminderMinutes.Set {
		todo.ReminderMinutes = in.ReminderMinutes
	}
	if in.DueAt.Set || in.AllDay.Set || in.Date.Set || in.Time.Set {
		todo.Date, todo.Time = DeriveDateTime(todo.DueAt, optionalPtr(in.Date), optionalPtr(in.Time), todo.AllDay)
	}
	todo.UpdatedAt = time.Now().UTC()

	_, err := r.db.Execute(ctx, `
		UPDATE todos SET
			project_id = ?, title = ?, description = ?, icon = ?, status = ?,
			due_at = ?, date = ?, time = ?, all_day = ?, reminder_minutes = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		nullableString(todo.ProjectID), todo.Title, nullableString(todo.Description), todo.Icon, todo.Status,
		todo.DueAt, todo.Date, todo.Time, boolToInt(todo.AllDay), encodeReminder(todo.ReminderMinutes),
		formatTime(todo.UpdatedAt),
		todo.ID, r.db.UserID(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", todo.ID, err)
	}
	return &todo, nil
}

// Delete removes a todo after its comments and subitems. Returns false when
// the todo does not exist.
func (r *TodoRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	userID := r.db.UserID()
	for _, stmt := range []string{
		"DELETE FROM comments WHERE todo_id = ? AND user_id = ?",
		"DELETE FROM subitems WHERE todo_id = ? AND user_id = ?",
		"DELETE FROM todos WHERE id = ? AND user_id = ?",
	} {
		if _, err := r.db.Execute(ctx, stmt, id, userID); err != nil {
			return false, fmt.Errorf("deleting todo %s: %w", id, err)
		}
	}
	return true, nil
}

func (r *TodoRepo) loadChildren(ctx context.Context, todo *model.Todo) error {
	comments, err := r.comments.List(ctx, todo.ID)
	if err != nil {
		return fmt.Errorf("loading comments for todo %s: %w", todo.ID, err)
	}
	subitems, err := r.subitems.List(ctx, todo.ID)
	if err != nil {
		return fmt.Errorf("loading subitems for todo %s: %w", todo.ID, err)
	}
	todo.Comments = comments
	todo.SubItems = subitems
	return nil
}

// buildTodoQuery constructs the SQL query and args for a TodoFilter.
func buildTodoQuery(userID string, filter TodoFilter) (string, []any) {
	conditions := []string{"user_id = ?"}
	args := []any{userID}

	if filter.ProjectID != nil {
		if *filter.ProjectID == model.NoProjectGroupID {
			conditions = append(conditions, "project_id IS NULL")
		} else {
			conditions = append(conditions, "project_id = ?")
			args = append(args, *filter.ProjectID)
		}
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		conditions = append(conditions,
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`)
		q := likePattern(strings.TrimSpace(*filter.Query))
		args = append(args, q, q)
	}

	query := "SELECT " + todoColumns + " FROM todos WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY due_at = '', due_at, created_at, id" +
		pageClause(filter.Limit, filter.Offset)
	return query, args
}

func scanTodo(row Row) model.Todo {
	return model.Todo{
		ID:              row.String("id"),
		ProjectID:       row.NullString("project_id"),
		Title:           row.String("title"),
		Description:     row.NullString("description"),
		Icon:            row.String("icon"),
		Status:          row.String("status"),
		DueAt:           row.String("due_at"),
		Date:            row.String("date"),
		Time:            row.String("time"),
		AllDay:          row.Bool("all_day"),
		ReminderMinutes: decodeReminder(row.NullInt("reminder_minutes")),
		CreatedAt:       row.Time("created_at"),
		UpdatedAt:       row.Time("updated_at"),
		Comments:        []model.Comment{},
		SubItems:        []model.SubItem{},
	}
}

func encodeReminder(o model.Optional[*int]) any {
	switch {
	case !o.Set:
		return nil
	case o.Value == nil:
		return reminderSuppressed
	default:
		return *o.Value
	}
}

func decodeReminder(v *int) model.Optional[*int] {
	switch {
	case v == nil:
		return model.Optional[*int]{}
	case *v < 0:
		return model.Optional[*int]{Set: true}
	default:
		return model.Some(model.Ptr(*v))
	}
}

// normalizeProjectID maps blank project references to "no project".
func normalizeProjectID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" || *id == model.NoProjectGroupID {
		return nil
	}
	return id
}

func optionalPtr(o model.Optional[string]) *string {
	if !o.Set {
		return nil
	}
	return &o.Value
}
