package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todo-extension/internal/model"
)

// CommentRepo manages one user's comments. Comments are only added and
// deleted, never edited.
type CommentRepo struct {
	db *ScopedDB
}

// NewCommentRepo returns a CommentRepo over db.
func NewCommentRepo(db *ScopedDB) *CommentRepo {
	return &CommentRepo{db: db}
}

// List returns the comments of a todo, oldest first.
func (r *CommentRepo) List(ctx context.Context, todoID string) ([]model.Comment, error) {
	rows, err := r.db.Execute(ctx,
		"SELECT id, todo_id, text, created_at FROM comments WHERE todo_id = ? AND user_id = ? ORDER BY created_at, id",
		todoID, r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, model.Comment{
			ID:        row.String("id"),
			TodoID:    row.String("todo_id"),
			Text:      row.String("text"),
			CreatedAt: row.Time("created_at"),
		})
	}
	return comments, nil
}

// Add appends a comment to todoID. A generated ID is used when id is empty.
func (r *CommentRepo) Add(ctx context.Context, todoID, id, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, required("text")
	}
	ok, err := r.db.exists(ctx, "todos", todoID)
	if err != nil {
		return nil, fmt.Errorf("checking todo %s: %w", todoID, err)
	}
	if !ok {
		return nil, notFound("todo", todoID)
	}
	if id == "" {
		id = uuid.New().String()
	} else if err := r.db.claimID(ctx, "comments", id); err != nil {
		return nil, err
	}

	c := model.Comment{
		ID:        id,
		TodoID:    todoID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.Execute(ctx,
		"INSERT INTO comments (id, todo_id, text, created_at, user_id) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.TodoID, c.Text, formatTime(c.CreatedAt), r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	return &c, nil
}

// Delete removes a comment. Returns false when it does not exist.
func (r *CommentRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.db.exists(ctx, "comments", id)
	if err != nil {
		return false, fmt.Errorf("checking comment %s: %w", id, err)
	}
	if !ok {
		return false, nil
	}
	if _, err := r.db.Execute(ctx,
		"DELETE FROM comments WHERE id = ? AND user_id = ?", id, r.db.UserID()); err != nil {
		return false, fmt.Errorf("deleting comment %s: %w", id, err)
	}
	return true, nil
}
