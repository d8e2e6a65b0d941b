package model

// NoProjectGroupID identifies the synthetic group of ungrouped todos.
const NoProjectGroupID = "none"

// PanelGroup is one project (or the "No Project" bucket) with its todos.
type PanelGroup struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ProjectID *string `json:"projectId"`
	Collapsed bool    `json:"collapsed"`
	Todos     []Todo  `json:"todos"`
}
