// Package panel renders the grouped todo panel for a terminal.
package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/reminder"
	"github.com/nhle/todo-extension/internal/theme"
)

// Options tunes rendering.
type Options struct {
	// Now decides which todos are overdue. Zero means time.Now.
	Now time.Time
	// Settings, when set, adds each todo's reminder time.
	Settings *model.Settings
	// Width wraps the panel border. Zero leaves it unwrapped.
	Width int
}

// Render draws every group. Collapsed groups show only their heading.
func Render(groups []model.PanelGroup, opts Options) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	sections := []string{theme.HeaderStyle.Render("Todos")}
	total := 0
	for _, g := range groups {
		total += len(g.Todos)
		sections = append(sections, renderGroup(g, now, opts.Settings))
	}
	if total == 0 {
		sections = append(sections, theme.HelpStyle.Render("Nothing to do."))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	style := theme.BorderStyle
	if opts.Width > 0 {
		style = style.Width(opts.Width)
	}
	return style.Render(body)
}

func renderGroup(g model.PanelGroup, now time.Time, settings *model.Settings) string {
	arrow := "▾"
	if g.Collapsed {
		arrow = "▸"
	}
	heading := theme.GroupStyle.Render(fmt.Sprintf("%s %s", arrow, g.Name)) +
		" " + theme.MetaStyle.Render(fmt.Sprintf("(%d)", len(g.Todos)))
	if g.Collapsed || len(g.Todos) == 0 {
		return heading
	}

	lines := []string{heading}
	for _, todo := range g.Todos {
		lines = append(lines, theme.ItemStyle.Render(renderTodo(todo, now, settings)))
	}
	return strings.Join(lines, "\n")
}

func renderTodo(todo model.Todo, now time.Time, settings *model.Settings) string {
	parts := []string{
		theme.StatusStyle(todo.Status).Render(theme.StatusMark(todo.Status)),
		todo.Title,
	}

	if due := dueLabel(todo); due != "" {
		style := theme.MetaStyle
		if at, ok := model.ParseTimestamp(todo.DueAt); ok && reminder.IsActive(todo) && at.Before(now) {
			style = theme.OverdueStyle
			due += " overdue"
		}
		parts = append(parts, style.Render(due))
	}

	if n := len(todo.SubItems); n > 0 {
		done := 0
		for _, s := range todo.SubItems {
			if s.Completed() {
				done++
			}
		}
		parts = append(parts, theme.MetaStyle.Render(fmt.Sprintf("%d/%d", done, n)))
	}
	if n := len(todo.Comments); n > 0 {
		parts = append(parts, theme.MetaStyle.Render(plural(n, "comment")))
	}

	if settings != nil {
		if state, at := reminder.Evaluate(todo, *settings); state == reminder.StateScheduled {
			parts = append(parts, theme.ReminderStyle.Render("reminder "+at.Local().Format("Jan 2 15:04")))
		}
	}
	return strings.Join(parts, " ")
}

func dueLabel(todo model.Todo) string {
	if todo.Date == "" {
		return ""
	}
	if todo.AllDay {
		return todo.Date + " all day"
	}
	return strings.TrimSpace(todo.Date + " " + todo.Time)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
