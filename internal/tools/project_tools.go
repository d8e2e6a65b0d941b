package tools

import (
	"context"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

func projectTools() []definition {
	return []definition{
		{
			id:          "project_list",
			name:        "List projects",
			description: "List projects ordered by name, optionally filtered by a search query.",
			params: append([]host.Param{
				str("query", "Case-insensitive search on name and description"),
			}, pageParams()...),
			run: listProjects,
		},
		{
			id:          "project_get",
			name:        "Get project",
			description: "Get a project by id.",
			params:      []host.Param{required(str("id", "Project id"))},
			run: func(ctx context.Context, c *call) (any, error) {
				return c.repo.GetProject(ctx, c.args.String("id"))
			},
		},
		{
			id:          "project_upsert",
			name:        "Create or update project",
			description: "Create a project, or update the supplied fields of an existing one. Name is required when creating.",
			params: []host.Param{
				str("id", "Project id; generated when omitted"),
				str("name", "Project name"),
				nullable(str("description", "Project description; null clears it")),
			},
			run: upsertProject,
		},
		{
			id:          "project_delete",
			name:        "Delete project",
			description: "Delete a project. Its todos move to No Project.",
			params:      []host.Param{required(str("id", "Project id"))},
			run:         deleteProject,
		},
	}
}

func listProjects(ctx context.Context, c *call) (any, error) {
	projects, err := c.repo.ListProjects(ctx, store.ProjectFilter{
		Query:  c.args.StringPtr("query"),
		Limit:  c.args.Int("limit"),
		Offset: c.args.Int("offset"),
	})
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

func upsertProject(ctx context.Context, c *call) (any, error) {
	project, err := c.repo.UpsertProject(ctx, c.args.String("id"), model.ProjectInput{
		Name:        c.args.OptString("name"),
		Description: c.args.NullString("description"),
	})
	if err != nil {
		return nil, err
	}
	c.changed(EntityProject, OpUpsert, project.ID, "")
	return project, nil
}

func deleteProject(ctx context.Context, c *call) (any, error) {
	id := c.args.String("id")
	ok, err := c.repo.DeleteProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.changed(EntityProject, OpDelete, id, "")
	}
	return deleted{Deleted: ok, ID: id}, nil
}
