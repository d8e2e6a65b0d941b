package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-extension/internal/store"
)

func toggleGroup(cmd *cobra.Command, repo store.Repository, groupID string) error {
	groups, err := repo.PanelGroups(cmd.Context())
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.ID == groupID {
			return repo.SetGroupCollapsed(cmd.Context(), groupID, !g.Collapsed)
		}
	}
	return fmt.Errorf("group %s %w", groupID, store.ErrNotFound)
}
