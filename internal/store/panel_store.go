package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nhle/todo-extension/internal/model"
)

// noProjectName labels the synthetic group of ungrouped todos.
const noProjectName = "No Project"

// panelPageSize bounds each todo page read while building the panel.
const panelPageSize = 200

// PanelRepo builds the grouped panel projection and stores group collapse
// state.
type PanelRepo struct {
	db       *ScopedDB
	projects *ProjectRepo
	todos    *TodoRepo
}

// NewPanelRepo returns a PanelRepo over db.
func NewPanelRepo(db *ScopedDB, projects *ProjectRepo, todos *TodoRepo) *PanelRepo {
	return &PanelRepo{db: db, projects: projects, todos: todos}
}

// Groups returns one group per project plus the "No Project" group, sorted
// by the earliest due timestamp of their todos. Groups without any dated
// todo come last, in name order.
func (r *PanelRepo) Groups(ctx context.Context) ([]model.PanelGroup, error) {
	var projects []model.Project
	for offset := 0; ; offset += panelPageSize {
		page, err := r.projects.List(ctx, ProjectFilter{Limit: panelPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		projects = append(projects, page...)
		if len(page) < panelPageSize {
			break
		}
	}

	collapsed, err := r.collapsedStates(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]model.PanelGroup, 0, len(projects)+1)
	index := make(map[string]int, len(projects)+1)
	for _, p := range projects {
		pid := p.ID
		index[p.ID] = len(groups)
		groups = append(groups, model.PanelGroup{
			ID:        p.ID,
			Name:      p.Name,
			ProjectID: &pid,
			Collapsed: collapsed[p.ID],
			Todos:     []model.Todo{},
		})
	}
	index[model.NoProjectGroupID] = len(groups)
	groups = append(groups, model.PanelGroup{
		ID:        model.NoProjectGroupID,
		Name:      noProjectName,
		Collapsed: collapsed[model.NoProjectGroupID],
		Todos:     []model.Todo{},
	})

	for offset := 0; ; offset += panelPageSize {
		page, err := r.todos.List(ctx, TodoFilter{Limit: panelPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, t := range page {
			key := model.NoProjectGroupID
			if t.ProjectID != nil {
				if _, ok := index[*t.ProjectID]; ok {
					key = *t.ProjectID
				}
			}
			g := &groups[index[key]]
			g.Todos = append(g.Todos, t)
		}
		if len(page) < panelPageSize {
			break
		}
	}

	earliest := make([]*time.Time, len(groups))
	for i, g := range groups {
		earliest[i] = earliestDue(g.Todos)
	}
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := earliest[order[a]], earliest[order[b]]
		switch {
		case ea == nil:
			return false
		case eb == nil:
			return true
		default:
			return ea.Before(*eb)
		}
	})

	sorted := make([]model.PanelGroup, len(groups))
	for i, idx := range order {
		sorted[i] = groups[idx]
	}
	return sorted, nil
}

// SetCollapsed records whether a group is collapsed.
func (r *PanelRepo) SetCollapsed(ctx context.Context, groupID string, collapsed bool) error {
	if groupID != model.NoProjectGroupID {
		ok, err := r.projects.Exists(ctx, groupID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("group", groupID)
		}
	}

	now := formatTime(time.Now())
	userID := r.db.UserID()
	if _, err := r.db.Execute(ctx,
		"DELETE FROM group_state WHERE group_id = ? AND user_id = ?", groupID, userID); err != nil {
		return fmt.Errorf("clearing group state %s: %w", groupID, err)
	}
	if _, err := r.db.Execute(ctx,
		"INSERT INTO group_state (group_id, collapsed, updated_at, user_id) VALUES (?, ?, ?, ?)",
		groupID, boolToInt(collapsed), now, userID); err != nil {
		return fmt.Errorf("saving group state %s: %w", groupID, err)
	}
	return nil
}

func (r *PanelRepo) collapsedStates(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Execute(ctx,
		"SELECT group_id, collapsed FROM group_state WHERE user_id = ?", r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("querying group state: %w", err)
	}
	states := make(map[string]bool, len(rows))
	for _, row := range rows {
		states[row.String("group_id")] = row.Bool("collapsed")
	}
	return states, nil
}

// earliestDue returns the earliest parseable due timestamp among todos.
func earliestDue(todos []model.Todo) *time.Time {
	var min *time.Time
	for _, t := range todos {
		due, ok := model.ParseTimestamp(t.DueAt)
		if !ok {
			continue
		}
		if min == nil || due.Before(*min) {
			d := due
			min = &d
		}
	}
	return min
}
