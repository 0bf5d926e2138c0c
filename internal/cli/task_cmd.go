package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskShowCmd(app),
		newTaskUpdateCmd(app),
		newTaskLogCmd(app),
		newTaskBacklogCmd(app),
		newTaskUnbacklogCmd(app),
		newTaskMoveSprintCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var project, assignee, title, description, sprint string
	var hours float64
	var backlog bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task at the end of the assignee's queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			t := &domain.Task{
				ProjectID:      p.ID,
				AssigneeID:     assignee,
				Title:          title,
				Description:    description,
				EstimatedHours: hours,
				IsBacklog:      backlog,
			}
			if sprint != "" {
				s, err := resolveSprint(ctx, app, p.ID, sprint)
				if err != nil {
					return err
				}
				t.SprintID = &s.ID
			}
			if err := app.Tasks.Create(ctx, t); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created task %s (%s)\n", t.Title, t.ID[:8])
			if saved, err := app.Tasks.GetByID(ctx, t.ID); err == nil && saved.StartDate != nil {
				fmt.Fprintf(out, "Scheduled %s\n", formatter.FormatSpan(saved.StartDate, saved.EndDate))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user ID (a member of the project's team)")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Estimated hours")
	cmd.Flags().StringVar(&sprint, "sprint", "", "Sprint (name or ID)")
	cmd.Flags().BoolVar(&backlog, "backlog", false, "Park the task in the backlog")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("assignee")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var project string
	var backlog bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, p.ID, backlog)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			names, err := sprintNames(ctx, app, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	cmd.Flags().BoolVar(&backlog, "backlog", false, "Include backlog tasks")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TASK",
		Short: "Show a task with its schedule and work log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			logs, err := app.Tasks.ListWorkLogs(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskDetail(t, logs))
			return nil
		},
	}
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var title, description, assignee, status string
	var hours float64

	cmd := &cobra.Command{
		Use:   "update TASK",
		Short: "Change a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			patch := service.TaskPatch{
				Title:       changed(flags, "title", title),
				Description: changed(flags, "description", description),
				AssigneeID:  changed(flags, "assignee", assignee),
			}
			if flags.Changed("status") {
				s, err := domain.ParseTaskStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &s
			}
			patch.EstimatedHours = changed(flags, "hours", hours)
			updated, err := app.Tasks.Update(ctx, t.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee")
	cmd.Flags().StringVar(&status, "status", "", "todo, in_progress, in_review or completed")
	cmd.Flags().Float64Var(&hours, "hours", 0, "New estimated hours")

	return cmd
}

func newTaskLogCmd(app *App) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "log TASK HOURS",
		Short: "Log hours worked on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			hours, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid hours %q: %w", args[1], domain.ErrInvalidInput)
			}
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Tasks.LogHours(ctx, t.ID, hours, note); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s (%s total)\n",
				formatter.FormatHours(hours), t.Title, formatter.FormatHours(t.ActualHours+hours))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Optional note")

	return cmd
}

func newTaskBacklogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backlog TASK",
		Short: "Park a task in the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Tasks.MoveToBacklog(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to the backlog\n", t.Title)
			return nil
		},
	}
}

func newTaskUnbacklogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unbacklog TASK",
		Short: "Bring a backlog task back to the end of its assignee's queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			moved, err := app.Tasks.MoveFromBacklog(ctx, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s at position %d\n", moved.Title, moved.OrderValue())
			return nil
		},
	}
}

func newTaskMoveSprintCmd(app *App) *cobra.Command {
	var sprint string

	cmd := &cobra.Command{
		Use:   "move-sprint TASK",
		Short: "Move a task into a sprint, or out of any sprint with --sprint \"\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			var sprintID *string
			label := "no sprint"
			if sprint != "" {
				s, err := resolveSprint(ctx, app, t.ProjectID, sprint)
				if err != nil {
					return err
				}
				sprintID = &s.ID
				label = s.Name
			}
			if _, err := app.Ordering.MoveToSprint(ctx, t.ID, sprintID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", t.Title, label)
			return nil
		},
	}

	cmd.Flags().StringVar(&sprint, "sprint", "", "Target sprint (name or ID); empty removes the sprint")
	_ = cmd.MarkFlagRequired("sprint")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove TASK",
		Short: "Delete a task and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := resolveTask(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirm(fmt.Sprintf("Delete task %q?", t.Title), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err := app.Tasks.Delete(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", t.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// changed returns &v when the named flag was set on the command line.
func changed[T any](flags *pflag.FlagSet, name string, v T) *T {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}
