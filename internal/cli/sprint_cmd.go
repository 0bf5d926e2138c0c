package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSprintCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}

	cmd.AddCommand(
		newSprintAddCmd(app),
		newSprintListCmd(app),
		newSprintCompleteCmd(app),
	)

	return cmd
}

func newSprintAddCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Append a sprint to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			s, err := app.Sprints.Create(ctx, p.ID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sprint %s at position %d (%s)\n", s.Name, s.Position, s.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			sprints, err := app.Sprints.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(sprints) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sprints found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Sprints", formatter.FormatSprintTable(sprints)))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintCompleteCmd(app *App) *cobra.Command {
	var project string
	var yes bool

	cmd := &cobra.Command{
		Use:   "complete SPRINT",
		Short: "Complete a sprint and move its finished tasks to the front",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			s, err := resolveSprint(ctx, app, p.ID, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirm(fmt.Sprintf("Complete sprint %q? Completed tasks will be reordered first", s.Name), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			done, err := app.Ordering.CompleteSprint(ctx, s.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed sprint %s\n", done.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
