package model

import "time"

// Todo status constants.
const (
	TodoStatusNotStarted = "not_started"
	TodoStatusInProgress = "in_progress"
	TodoStatusCompleted  = "completed"
	TodoStatusCancelled  = "cancelled"
)

// TodoStatuses lists every accepted status value.
var TodoStatuses = []string{
	TodoStatusNotStarted,
	TodoStatusInProgress,
	TodoStatusCompleted,
	TodoStatusCancelled,
}

// ValidTodoStatus reports whether s is one of TodoStatuses.
func ValidTodoStatus(s string) bool {
	for _, v := range TodoStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// LegacyUserID owns rows written before per-user scoping existed.
const LegacyUserID = "legacy"

// Todo is a user task with a due timestamp, status, and optional reminder.
type Todo struct {
	ID          string  `json:"id"`
	ProjectID   *string `json:"projectId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Icon        string  `json:"icon"`
	Status      string  `json:"status"`

	// DueAt is ISO-8601 with offset. Date and Time are derived from it
	// unless they were explicitly overridden.
	DueAt  string `json:"dueAt"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	AllDay bool   `json:"allDay"`

	// ReminderMinutes is omitted when the user default applies and null
	// when reminders are suppressed for this todo.
	ReminderMinutes Optional[*int] `json:"reminderMinutes,omitzero"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Comments []Comment `json:"comments"`
	SubItems []SubItem `json:"subItems"`
}

// TodoInput carries a partial todo for upserts. Each omitted field keeps its
// stored value.
type TodoInput struct {
	ProjectID       Optional[*string]
	Title           Optional[string]
	Description     Optional[*string]
	Icon            Optional[string]
	Status          Optional[string]
	DueAt           Optional[string]
	Date            Optional[string]
	Time            Optional[string]
	AllDay          Optional[bool]
	ReminderMinutes Optional[*int]
}

// SubItem is a checklist entry nested under a todo.
type SubItem struct {
	ID          string     `json:"id"`
	TodoID      string     `json:"todoId"`
	Text        string     `json:"text"`
	CompletedAt *time.Time `json:"completedAt"`
	SortOrder   int        `json:"sortOrder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Completed reports whether the subitem has a completion timestamp.
func (s SubItem) Completed() bool { return s.CompletedAt != nil }

// SubItemInput carries a partial subitem for upserts.
type SubItemInput struct {
	Text      Optional[string]
	Completed Optional[bool]
	SortOrder Optional[int]
}

// Comment is an append-only note on a todo.
type Comment struct {
	ID        string    `json:"id"`
	TodoID    string    `json:"todoId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
