package store

import (
	"context"
	"fmt"

	"github.com/nhle/todo-extension/internal/model"
)

// Repository is the user-scoped facade over every entity repository.
type Repository interface {
	UserID() string
	Initialize(ctx context.Context) error
	ForUser(userID string) Repository

	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	UpsertProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	ListTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error)
	GetTodo(ctx context.Context, id string) (*model.Todo, error)
	UpsertTodo(ctx context.Context, id string, in model.TodoInput) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id string) (bool, error)

	ListSubItems(ctx context.Context, todoID string) ([]model.SubItem, error)
	UpsertSubItem(ctx context.Context, todoID, id string, in model.SubItemInput) (*model.SubItem, error)
	ToggleSubItem(ctx context.Context, todoID, id string) (*model.SubItem, bool, error)
	DeleteSubItem(ctx context.Context, todoID, id string) (bool, error)

	ListComments(ctx context.Context, todoID string) ([]model.Comment, error)
	AddComment(ctx context.Context, todoID, id, text string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) (bool, error)

	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, in model.SettingsInput) (*model.Settings, error)

	PanelGroups(ctx context.Context) ([]model.PanelGroup, error)
	SetGroupCollapsed(ctx context.Context, groupID string, collapsed bool) error
}

// Store composes the entity repositories for one user over a shared
// Executor.
type Store struct {
	exec   Executor
	schema *Schema
	db     *ScopedDB

	projects *ProjectRepo
	todos    *TodoRepo
	subitems *SubItemRepo
	comments *CommentRepo
	settings *SettingsRepo
	panel    *PanelRepo
}

// New returns a Store bound to the legacy user. Call ForUser to rebind it.
func New(exec Executor) *Store {
	return newStore(exec, model.LegacyUserID, &Schema{})
}

func newStore(exec Executor, userID string, schema *Schema) *Store {
	db := NewScopedDB(exec, userID, schema)
	projects := NewProjectRepo(db)
	subitems := NewSubItemRepo(db)
	comments := NewCommentRepo(db)
	todos := NewTodoRepo(db, projects, subitems, comments)
	return &Store{
		exec:     exec,
		schema:   schema,
		db:       db,
		projects: projects,
		todos:    todos,
		subitems: subitems,
		comments: comments,
		settings: NewSettingsRepo(db),
		panel:    NewPanelRepo(db, projects, todos),
	}
}

// ForUser returns a Store for userID sharing this Store's executor and
// schema state.
func (s *Store) ForUser(userID string) Repository {
	return newStore(s.exec, userID, s.schema)
}

func (s *Store) UserID() string { return s.db.UserID() }

// Initialize runs schema setup once for the shared executor.
func (s *Store) Initialize(ctx context.Context) error { return s.db.Initialize(ctx) }

func (s *Store) ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	return s.projects.List(ctx, filter)
}

func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.Get(ctx, id)
}

func (s *Store) UpsertProject(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	return s.projects.Upsert(ctx, id, in)
}

func (s *Store) DeleteProject(ctx context.Context, id string) (bool, error) {
	return s.projects.Delete(ctx, id)
}

func (s *Store) ListTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error) {
	return s.todos.List(ctx, filter)
}

func (s *Store) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	return s.todos.Get(ctx, id)
}

func (s *Store) UpsertTodo(ctx context.Context, id string, in model.TodoInput) (*model.Todo, error) {
	return s.todos.Upsert(ctx, id, in)
}

func (s *Store) DeleteTodo(ctx context.Context, id string) (bool, error) {
	return s.todos.Delete(ctx, id)
}

func (s *Store) ListSubItems(ctx context.Context, todoID string) ([]model.SubItem, error) {
	return s.subitems.List(ctx, todoID)
}

func (s *Store) UpsertSubItem(ctx context.Context, todoID, id string, in model.SubItemInput) (*model.SubItem, error) {
	return s.subitems.Upsert(ctx, todoID, id, in)
}

func (s *Store) ToggleSubItem(ctx context.Context, todoID, id string) (*model.SubItem, bool, error) {
	return s.subitems.Toggle(ctx, todoID, id)
}

func (s *Store) DeleteSubItem(ctx context.Context, todoID, id string) (bool, error) {
	return s.subitems.Delete(ctx, todoID, id)
}

func (s *Store) ListComments(ctx context.Context, todoID string) ([]model.Comment, error) {
	return s.comments.List(ctx, todoID)
}

func (s *Store) AddComment(ctx context.Context, todoID, id, text string) (*model.Comment, error) {
	return s.comments.Add(ctx, todoID, id, text)
}

func (s *Store) DeleteComment(ctx context.Context, id string) (bool, error) {
	return s.comments.Delete(ctx, id)
}

func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *Store) UpdateSettings(ctx context.Context, in model.SettingsInput) (*model.Settings, error) {
	return s.settings.Update(ctx, in)
}

func (s *Store) PanelGroups(ctx context.Context) ([]model.PanelGroup, error) {
	return s.panel.Groups(ctx)
}

func (s *Store) SetGroupCollapsed(ctx context.Context, groupID string, collapsed bool) error {
	return s.panel.SetCollapsed(ctx, groupID, collapsed)
}

// Users returns every user id that owns at least one todo, sorted.
func Users(ctx context.Context, exec Executor) ([]string, error) {
	rows, err := exec.Execute(ctx, "SELECT DISTINCT user_id FROM todos ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("listing todo owners: %w", err)
	}
	users := make([]string, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.String("user_id"))
	}
	return users, nil
}
