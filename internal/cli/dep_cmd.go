package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/spf13/cobra"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(
		newDepAddCmd(app),
		newDepRemoveCmd(app),
		newDepListCmd(app),
	)

	return cmd
}

func newDepAddCmd(app *App) *cobra.Command {
	var depType string
	var lag int

	cmd := &cobra.Command{
		Use:   "add TASK DEPENDS_ON",
		Short: "Make TASK wait for DEPENDS_ON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			pred, err := resolveTask(ctx, app, args[1])
			if err != nil {
				return err
			}
			d := &domain.TaskDependency{
				TaskID:      task.ID,
				DependsOnID: pred.ID,
				Type:        domain.DependencyType(depType),
				LagDays:     lag,
			}
			if err := app.Dependencies.Add(ctx, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now depends on %s (%s, lag %dd)\n", task.Title, pred.Title, d.Type, d.LagDays)
			return nil
		},
	}

	cmd.Flags().StringVar(&depType, "type", string(domain.FinishToStart), "finish_to_start, start_to_start, finish_to_finish or start_to_finish")
	cmd.Flags().IntVar(&lag, "lag", 0, "Working days to wait after the predecessor ends")

	return cmd
}

func newDepRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TASK DEPENDS_ON",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			pred, err := resolveTask(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Dependencies.Remove(ctx, task.ID, pred.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s no longer depends on %s\n", task.Title, pred.Title)
			return nil
		},
	}
}

func newDepListCmd(app *App) *cobra.Command {
	var project, task string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dependencies of a project or a single task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var deps []domain.TaskDependency
			var projectID string
			if task != "" {
				t, err := resolveTask(ctx, app, task)
				if err != nil {
					return err
				}
				pred, succ, err := app.Dependencies.ListForTask(ctx, t.ID)
				if err != nil {
					return err
				}
				deps = append(pred, succ...)
				projectID = t.ProjectID
			} else {
				p, err := resolveProject(ctx, app, project)
				if err != nil {
					return err
				}
				if deps, err = app.Dependencies.ListByProject(ctx, p.ID); err != nil {
					return err
				}
				projectID = p.ID
			}
			if len(deps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dependencies found.")
				return nil
			}

			tasks, err := app.Tasks.ListByProject(ctx, projectID, true)
			if err != nil {
				return err
			}
			titles := make(map[string]string, len(tasks))
			for _, t := range tasks {
				titles[t.ID] = t.Title
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDependencyList(deps, titles))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	cmd.Flags().StringVar(&task, "task", "", "Only edges touching this task")
	cmd.MarkFlagsOneRequired("project", "task")
	cmd.MarkFlagsMutuallyExclusive("project", "task")

	return cmd
}
