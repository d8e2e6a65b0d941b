package tools

import (
	"context"
	"fmt"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

func panelTools() []definition {
	return []definition{
		{
			id:          "panel_get",
			name:        "Get panel",
			description: "Get todos grouped by project, groups ordered by their earliest due todo.",
			run:         panelGroups,
		},
	}
}

func uiActions() []definition {
	return []definition{
		{
			id:          "panel.open",
			name:        "Open todo panel",
			description: "Load the grouped todo panel.",
			run:         panelGroups,
		},
		{
			id:          "panel.toggleGroup",
			name:        "Toggle panel group",
			description: "Collapse or expand a panel group. Flips the current state when collapsed is omitted.",
			params: []host.Param{
				required(str("groupId", `Project id, or "none"`)),
				boolean("collapsed", "Target state"),
			},
			run: toggleGroup,
		},
		{
			id:          "todo.setStatus",
			name:        "Set todo status",
			description: "Change the status of an existing todo.",
			params: []host.Param{
				required(str("id", "Todo id")),
				required(oneOf(str("status", "Todo status"), model.TodoStatuses...)),
			},
			run: setTodoStatus,
		},
		{
			id:          "subitem.toggle",
			name:        "Toggle subitem",
			description: "Flip a subitem between completed and not completed.",
			params: []host.Param{
				required(str("todoId", "Parent todo id")),
				required(str("id", "Subitem id")),
			},
			run: toggleSubItem,
		},
	}
}

func panelGroups(ctx context.Context, c *call) (any, error) {
	return c.repo.PanelGroups(ctx)
}

type groupState struct {
	GroupID   string `json:"groupId"`
	Collapsed bool   `json:"collapsed"`
}

func toggleGroup(ctx context.Context, c *call) (any, error) {
	groupID := c.args.String("groupId")
	target := c.args.OptBool("collapsed")
	collapsed := target.Value
	if !target.Set {
		current, err := groupCollapsed(ctx, c.repo, groupID)
		if err != nil {
			return nil, err
		}
		collapsed = !current
	}
	if err := c.repo.SetGroupCollapsed(ctx, groupID, collapsed); err != nil {
		return nil, err
	}
	c.changed(EntityGroup, OpUpdate, groupID, "")
	return groupState{GroupID: groupID, Collapsed: collapsed}, nil
}

func groupCollapsed(ctx context.Context, repo store.Repository, groupID string) (bool, error) {
	groups, err := repo.PanelGroups(ctx)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if g.ID == groupID {
			return g.Collapsed, nil
		}
	}
	return false, fmt.Errorf("group %s %w", groupID, store.ErrNotFound)
}

func setTodoStatus(ctx context.Context, c *call) (any, error) {
	id := c.args.String("id")
	if _, err := c.repo.GetTodo(ctx, id); err != nil {
		return nil, err
	}
	todo, err := c.repo.UpsertTodo(ctx, id, model.TodoInput{
		Status: model.Some(c.args.String("status")),
	})
	if err != nil {
		return nil, err
	}
	c.changed(EntityTodo, OpUpsert, todo.ID, todo.ID)
	return todo, nil
}
