package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-extension/internal/ui/panel"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Print a user's todos grouped by project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		repo := a.Extension.Repository().ForUser(resolveUser(cmd))

		if groupID, _ := cmd.Flags().GetString("toggle"); groupID != "" {
			if err := toggleGroup(cmd, repo, groupID); err != nil {
				return err
			}
		}

		groups, err := repo.PanelGroups(ctx)
		if err != nil {
			return err
		}
		settings, err := repo.GetSettings(ctx)
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")

		fmt.Fprintln(cmd.OutOrStdout(), panel.Render(groups, panel.Options{Settings: settings, Width: width}))
		return nil
	},
}

func init() {
	panelCmd.Flags().String("user", "", "user id (default: default_user_id)")
	panelCmd.Flags().String("toggle", "", "collapse or expand a group before printing")
	panelCmd.Flags().Int("width", 0, "panel width")
}
