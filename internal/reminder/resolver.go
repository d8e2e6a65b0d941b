// Package reminder decides when a todo's reminder fires and builds the
// instruction delivered to the chat surface when it does.
package reminder

import (
	"regexp"
	"time"

	"github.com/nhle/todo-extension/internal/model"
)

// TimestampLayout is how reminder times are written in job payloads and
// tool output.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var trailingOffset = regexp.MustCompile(`([+-]\d{2}):?(\d{2})$`)

// IsActive reports whether the todo is still eligible for reminders.
func IsActive(todo model.Todo) bool {
	return todo.Status != model.TodoStatusCompleted && todo.Status != model.TodoStatusCancelled
}

// LeadMinutes returns the effective lead time: the todo's override when it
// was set (nil meaning suppressed), else the user default.
func LeadMinutes(todo model.Todo, settings model.Settings) *int {
	if todo.ReminderMinutes.Set {
		return todo.ReminderMinutes.Value
	}
	return settings.DefaultReminderMinutes
}

// ResolveReminderAt returns the absolute time the todo's reminder fires.
// The second result is false when no reminder applies.
//
// Timed todos fire at dueAt minus the effective lead minutes. All-day todos
// fire on the due date at settings.AllDayReminderTime, in the due
// timestamp's offset, and never fall back to lead minutes. An explicit null
// override suppresses both kinds.
func ResolveReminderAt(todo model.Todo, settings model.Settings) (time.Time, bool) {
	if todo.DueAt == "" {
		return time.Time{}, false
	}
	if todo.ReminderMinutes.Set && todo.ReminderMinutes.Value == nil {
		return time.Time{}, false
	}

	if todo.AllDay {
		return allDayReminder(todo.DueAt, settings.AllDayReminderTime)
	}

	lead := LeadMinutes(todo, settings)
	if lead == nil {
		return time.Time{}, false
	}
	due, ok := model.ParseTimestamp(todo.DueAt)
	if !ok {
		return time.Time{}, false
	}
	return due.Add(-time.Duration(*lead) * time.Minute), true
}

func allDayReminder(dueAt string, timeOfDay *string) (time.Time, bool) {
	if timeOfDay == nil || !model.ValidTimeOfDay(*timeOfDay) || len(dueAt) < 10 {
		return time.Time{}, false
	}
	clock := *timeOfDay
	if len(clock) == 5 {
		clock += ":00"
	}

	at, err := time.Parse("2006-01-02T15:04:05Z07:00", dueAt[:10]+"T"+clock+dueOffset(dueAt))
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// dueOffset returns the UTC offset of dueAt as "+hh:mm", or "Z".
func dueOffset(dueAt string) string {
	if t, ok := model.ParseTimestamp(dueAt); ok {
		_, secs := t.Zone()
		if secs == 0 {
			return "Z"
		}
		return t.Format("-07:00")
	}
	if m := trailingOffset.FindStringSubmatch(dueAt); m != nil && len(dueAt) > 10 {
		return m[1] + ":" + m[2]
	}
	return "Z"
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// State is the computed reminder-scheduling status of a todo.
type State string

const (
	StateInactive   State = "inactive"
	StateNoDueDate  State = "no_due_date"
	StateNoReminder State = "no_reminder"
	StateScheduled  State = "scheduled"
)

// Evaluate classifies the todo and, when scheduled, returns its fire time.
func Evaluate(todo model.Todo, settings model.Settings) (State, time.Time) {
	switch {
	case !IsActive(todo):
		return StateInactive, time.Time{}
	case todo.DueAt == "":
		return StateNoDueDate, time.Time{}
	}
	at, ok := ResolveReminderAt(todo, settings)
	if !ok {
		return StateNoReminder, time.Time{}
	}
	return StateScheduled, at
}
