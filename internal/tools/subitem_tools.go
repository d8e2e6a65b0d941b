package tools

import (
	"context"
	"fmt"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

func subItemTools() []definition {
	todoID := required(str("todoId", "Parent todo id"))
	return []definition{
		{
			id:          "subitem_list",
			name:        "List subitems",
			description: "List the subitems of a todo in sort order.",
			params:      []host.Param{todoID},
			run:         listSubItems,
		},
		{
			id:          "subitem_upsert",
			name:        "Create or update subitem",
			description: "Create a subitem on a todo, or update the supplied fields of an existing one. Text is required when creating.",
			params: []host.Param{
				todoID,
				str("id", "Subitem id; generated when omitted"),
				str("text", "Subitem text"),
				boolean("completed", "Whether the subitem is completed"),
				num("sortOrder", "Position within the todo"),
			},
			run: upsertSubItem,
		},
		{
			id:          "subitem_toggle",
			name:        "Toggle subitem",
			description: "Flip a subitem between completed and not completed.",
			params:      []host.Param{todoID, required(str("id", "Subitem id"))},
			run:         toggleSubItem,
		},
		{
			id:          "subitem_delete",
			name:        "Delete subitem",
			description: "Delete a subitem.",
			params:      []host.Param{todoID, required(str("id", "Subitem id"))},
			run:         deleteSubItem,
		},
	}
}

func listSubItems(ctx context.Context, c *call) (any, error) {
	items, err := c.repo.ListSubItems(ctx, c.args.String("todoId"))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.SubItem{}
	}
	return items, nil
}

func upsertSubItem(ctx context.Context, c *call) (any, error) {
	todoID := c.args.String("todoId")
	item, err := c.repo.UpsertSubItem(ctx, todoID, c.args.String("id"), model.SubItemInput{
		Text:      c.args.OptString("text"),
		Completed: c.args.OptBool("completed"),
		SortOrder: c.args.OptInt("sortOrder"),
	})
	if err != nil {
		return nil, err
	}
	c.changed(EntitySubItem, OpUpsert, item.ID, todoID)
	return item, nil
}

func toggleSubItem(ctx context.Context, c *call) (any, error) {
	todoID, id := c.args.String("todoId"), c.args.String("id")
	item, ok, err := c.repo.ToggleSubItem(ctx, todoID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("subitem %s %w", id, store.ErrNotFound)
	}
	c.changed(EntitySubItem, OpToggle, id, todoID)
	return item, nil
}

func deleteSubItem(ctx context.Context, c *call) (any, error) {
	todoID, id := c.args.String("todoId"), c.args.String("id")
	ok, err := c.repo.DeleteSubItem(ctx, todoID, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.changed(EntitySubItem, OpDelete, id, todoID)
	}
	return deleted{Deleted: ok, ID: id}, nil
}
