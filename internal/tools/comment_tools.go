package tools

import (
	"context"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

func commentTools() []definition {
	return []definition{
		{
			id:          "comment_list",
			name:        "List comments",
			description: "List the comments on a todo, oldest first.",
			params:      []host.Param{required(str("todoId", "Parent todo id"))},
			run:         listComments,
		},
		{
			id:          "comment_add",
			name:        "Add comment",
			description: "Add a comment to a todo. Comments cannot be edited.",
			params: []host.Param{
				required(str("todoId", "Parent todo id")),
				required(str("text", "Comment text")),
				str("id", "Comment id; generated when omitted"),
			},
			run: addComment,
		},
		{
			id:          "comment_delete",
			name:        "Delete comment",
			description: "Delete a comment.",
			params:      []host.Param{required(str("id", "Comment id"))},
			run:         deleteComment,
		},
	}
}

func listComments(ctx context.Context, c *call) (any, error) {
	comments, err := c.repo.ListComments(ctx, c.args.String("todoId"))
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

func addComment(ctx context.Context, c *call) (any, error) {
	todoID := c.args.String("todoId")
	comment, err := c.repo.AddComment(ctx, todoID, c.args.String("id"), c.args.String("text"))
	if err != nil {
		return nil, err
	}
	c.changed(EntityComment, OpUpsert, comment.ID, todoID)
	return comment, nil
}

func deleteComment(ctx context.Context, c *call) (any, error) {
	id := c.args.String("id")
	ok, err := c.repo.DeleteComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.changed(EntityComment, OpDelete, id, "")
	}
	return deleted{Deleted: ok, ID: id}, nil
}
