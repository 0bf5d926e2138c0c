package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRecalcCmd(app *App) *cobra.Command {
	var assignee string

	cmd := &cobra.Command{
		Use:   "recalc PROJECT",
		Short: "Rebuild calendars from scratch",
		Long: "Rebuild calendars from scratch. Without --assignee every assignee of\n" +
			"the project is recalculated in parallel.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			if assignee != "" {
				sched, err := app.Schedule.RecalculateAssignee(ctx, p.ID, assignee)
				if err != nil {
					return err
				}
				if _, err := app.Schedule.RefreshProjectEndDate(ctx, p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recalculated %s: %d tasks, %d moved\n", assignee, len(sched.Tasks), len(sched.Changed))
				return nil
			}
			sched, err := app.Schedule.RecalculateProject(ctx, p.ID)
			if sched != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecalc(sched))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Only recalculate this assignee")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a team, project, sprints, tasks and dependencies from JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportFile(cmd.Context(), args[0])
			if res != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			}
			return err
		},
	}
}
