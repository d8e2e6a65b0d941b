package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-extension/internal/reminder"
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule",
	Short: "Recompute every reminder of a user",
	Long: `Recompute the reminder of every todo of a user. With --dry-run the computed
reminder times are printed without scheduling anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		userID := resolveUser(cmd)
		out := cmd.OutOrStdout()

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			plan, err := a.Extension.Plan(ctx, userID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TODO\tSTATE\tREMINDER\tTITLE")
			for _, p := range plan {
				at := "-"
				if p.FireAt != nil {
					at = reminder.FormatTimestamp(*p.FireAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.TodoID, p.State, at, p.Title)
			}
			return w.Flush()
		}

		n, err := a.Extension.RescheduleAll(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "scheduled %d reminders for %s\n", n, userID)
		for _, job := range a.Scheduler.Pending() {
			fmt.Fprintf(out, "  %s  %s\n", reminder.FormatTimestamp(job.FireAt), job.ID)
		}
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().String("user", "", "user id (default: default_user_id)")
	rescheduleCmd.Flags().Bool("dry-run", false, "print computed reminder times only")
}
