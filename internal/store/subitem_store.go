package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-extension/internal/model"
)

const subItemColumns = "id, todo_id, text, completed_at, sort_order, created_at, updated_at"

// SubItemRepo manages checklist entries of one user's todos.
type SubItemRepo struct {
	db *ScopedDB
}

// NewSubItemRepo returns a SubItemRepo over db.
func NewSubItemRepo(db *ScopedDB) *SubItemRepo {
	return &SubItemRepo{db: db}
}

// List returns all subitems for a todo, ordered by sort_order.
func (r *SubItemRepo) List(ctx context.Context, todoID string) ([]model.SubItem, error) {
	rows, err := r.db.Execute(ctx,
		"SELECT "+subItemColumns+" FROM subitems WHERE todo_id = ? AND user_id = ? ORDER BY sort_order, created_at, id",
		todoID, r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("querying subitems: %w", err)
	}

	items := make([]model.SubItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, scanSubItem(row))
	}
	return items, nil
}

// Get retrieves a subitem of todoID.
func (r *SubItemRepo) Get(ctx context.Context, todoID, id string) (*model.SubItem, error) {
	row, err := r.db.queryOne(ctx,
		"SELECT "+subItemColumns+" FROM subitems WHERE id = ? AND todo_id = ? AND user_id = ?",
		id, todoID, r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("getting subitem %s: %w", id, err)
	}
	if row == nil {
		return nil, notFound("subitem", id)
	}
	item := scanSubItem(row)
	return &item, nil
}

// Upsert merges in into the subitem with id, or appends a new subitem to
// todoID. Creation requires text.
func (r *SubItemRepo) Upsert(ctx context.Context, todoID, id string, in model.SubItemInput) (*model.SubItem, error) {
	ok, err := r.db.exists(ctx, "todos", todoID)
	if err != nil {
		return nil, fmt.Errorf("checking todo %s: %w", todoID, err)
	}
	if !ok {
		return nil, notFound("todo", todoID)
	}
	if in.Text.Set && strings.TrimSpace(in.Text.Value) == "" {
		return nil, required("text")
	}

	now := time.Now().UTC()

	if id != "" {
		existing, err := r.Get(ctx, todoID, id)
		if err == nil {
			item := *existing
			if in.Text.Set {
				item.Text = in.Text.Value
			}
			if in.Completed.Set {
				item.CompletedAt = completionTime(in.Completed.Value, item.CompletedAt, now)
			}
			if in.SortOrder.Set {
				item.SortOrder = in.SortOrder.Value
			}
			item.UpdatedAt = now

			_, err := r.db.Execute(ctx,
				"UPDATE subitems SET text = ?, completed_at = ?, sort_order = ?, updated_at = ? WHERE id = ? AND user_id = ?",
				item.Text, nullableTime(item.CompletedAt), item.SortOrder, formatTime(item.UpdatedAt),
				item.ID, r.db.UserID())
			if err != nil {
				return nil, fmt.Errorf("updating subitem %s: %w", id, err)
			}
			return &item, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	if !in.Text.Set {
		return nil, required("text")
	}
	if id == "" {
		id = uuid.New().String()
	} else if err := r.db.claimID(ctx, "subitems", id); err != nil {
		return nil, err
	}

	sortOrder := in.SortOrder.Value
	if !in.SortOrder.Set {
		row, err := r.db.queryOne(ctx,
			"SELECT COALESCE(MAX(sort_order), 0) AS max_order FROM subitems WHERE todo_id = ? AND user_id = ?",
			todoID, r.db.UserID())
		if err != nil {
			return nil, fmt.Errorf("getting max subitem sort_order: %w", err)
		}
		sortOrder = row.Int("max_order") + 1
	}

	item := model.SubItem{
		ID:          id,
		TodoID:      todoID,
		Text:        in.Text.Value,
		CompletedAt: completionTime(in.Completed.Value, nil, now),
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = r.db.Execute(ctx, `
		INSERT INTO subitems (id, todo_id, text, completed_at, sort_order, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TodoID, item.Text, nullableTime(item.CompletedAt), item.SortOrder,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt), r.db.UserID(),
	)
	if err != nil {
		return nil, fmt.Errorf("adding subitem: %w", err)
	}
	return &item, nil
}

// Toggle flips the completion state of a subitem. The read and the write
// are separate statements, so concurrent toggles of one item race and the
// last write wins. Returns false when the subitem does not exist.
func (r *SubItemRepo) Toggle(ctx context.Context, todoID, id string) (*model.SubItem, bool, error) {
	item, err := r.Get(ctx, todoID, id)
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	if item.CompletedAt == nil {
		item.CompletedAt = &now
	} else {
		item.CompletedAt = nil
	}
	item.UpdatedAt = now

	_, err = r.db.Execute(ctx,
		"UPDATE subitems SET completed_at = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		nullableTime(item.CompletedAt), formatTime(item.UpdatedAt), item.ID, r.db.UserID())
	if err != nil {
		return nil, false, fmt.Errorf("toggling subitem %s: %w", id, err)
	}
	return item, true, nil
}

// Delete removes a subitem. Returns false when it does not exist.
func (r *SubItemRepo) Delete(ctx context.Context, todoID, id string) (bool, error) {
	if _, err := r.Get(ctx, todoID, id); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := r.db.Execute(ctx,
		"DELETE FROM subitems WHERE id = ? AND user_id = ?", id, r.db.UserID()); err != nil {
		return false, fmt.Errorf("deleting subitem %s: %w", id, err)
	}
	return true, nil
}

// completionTime keeps an existing completion timestamp when the item stays
// completed.
func completionTime(completed bool, current *time.Time, now time.Time) *time.Time {
	if !completed {
		return nil
	}
	if current != nil {
		return current
	}
	return &now
}

func scanSubItem(row Row) model.SubItem {
	return model.SubItem{
		ID:          row.String("id"),
		TodoID:      row.String("todo_id"),
		Text:        row.String("text"),
		CompletedAt: row.NullTime("completed_at"),
		SortOrder:   row.Int("sort_order"),
		CreatedAt:   row.Time("created_at"),
		UpdatedAt:   row.Time("updated_at"),
	}
}
