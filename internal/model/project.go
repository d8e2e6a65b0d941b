package model

import "time"

// Project is a grouping container for related todos.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectInput carries a partial project for upserts.
type ProjectInput struct {
	Name        Optional[string]
	Description Optional[*string]
}
