package tools

import (
	"context"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

func todoTools() []definition {
	return []definition{
		{
			id:          "todo_list",
			name:        "List todos",
			description: `List todos ordered by due time. projectId "none" selects todos without a project.`,
			params: append([]host.Param{
				str("query", "Case-insensitive search on title and description"),
				str("projectId", `Project id, or "none"`),
				oneOf(str("status", "Todo status"), model.TodoStatuses...),
			}, pageParams()...),
			run: listTodos,
		},
		{
			id:          "todo_get",
			name:        "Get todo",
			description: "Get a todo with its comments and subitems.",
			params:      []host.Param{required(str("id", "Todo id"))},
			run: func(ctx context.Context, c *call) (any, error) {
				return c.repo.GetTodo(ctx, c.args.String("id"))
			},
		},
		{
			id:   "todo_upsert",
			name: "Create or update todo",
			description: "Create a todo, or update the supplied fields of an existing one. " +
				"Title, icon and status are required when creating. " +
				"reminderMinutes null disables the reminder; omit it to use the default.",
			params: []host.Param{
				str("id", "Todo id; generated when omitted"),
				nullable(str("projectId", `Project id; null or "none" removes the project`)),
				str("title", "Title"),
				nullable(str("description", "Description; null clears it")),
				str("icon", "Icon identifier"),
				oneOf(str("status", "Todo status"), model.TodoStatuses...),
				str("dueAt", "Due timestamp, ISO-8601 with offset"),
				str("date", "Display date override (YYYY-MM-DD)"),
				str("time", "Display time override (HH:MM)"),
				boolean("allDay", "Whether the todo lasts all day"),
				rules(nullable(num("reminderMinutes", "Reminder lead minutes before dueAt")), "min=0"),
			},
			run: upsertTodo,
		},
		{
			id:          "todo_delete",
			name:        "Delete todo",
			description: "Delete a todo with its comments and subitems.",
			params:      []host.Param{required(str("id", "Todo id"))},
			run:         deleteTodo,
		},
	}
}

func listTodos(ctx context.Context, c *call) (any, error) {
	todos, err := c.repo.ListTodos(ctx, store.TodoFilter{
		Query:     c.args.StringPtr("query"),
		ProjectID: c.args.StringPtr("projectId"),
		Status:    c.args.StringPtr("status"),
		Limit:     c.args.Int("limit"),
		Offset:    c.args.Int("offset"),
	})
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func todoInput(a Args) model.TodoInput {
	return model.TodoInput{
		ProjectID:       a.NullString("projectId"),
		Title:           a.OptString("title"),
		Description:     a.NullString("description"),
		Icon:            a.OptString("icon"),
		Status:          a.OptString("status"),
		DueAt:           a.OptString("dueAt"),
		Date:            a.OptString("date"),
		Time:            a.OptString("time"),
		AllDay:          a.OptBool("allDay"),
		ReminderMinutes: a.NullInt("reminderMinutes"),
	}
}

func upsertTodo(ctx context.Context, c *call) (any, error) {
	todo, err := c.repo.UpsertTodo(ctx, c.args.String("id"), todoInput(c.args))
	if err != nil {
		return nil, err
	}
	c.changed(EntityTodo, OpUpsert, todo.ID, todo.ID)
	return todo, nil
}

func deleteTodo(ctx context.Context, c *call) (any, error) {
	id := c.args.String("id")
	ok, err := c.repo.DeleteTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.changed(EntityTodo, OpDelete, id, id)
	}
	return deleted{Deleted: ok, ID: id}, nil
}
