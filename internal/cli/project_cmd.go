package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectScheduleCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var name, shortID, team, start string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			startDate, err := parseDate("start date", start)
			if err != nil {
				return err
			}
			p := &domain.Project{ShortID: shortID, Name: name, StartDate: startDate}
			if team != "" {
				t, err := app.Teams.Resolve(ctx, team)
				if err != nil {
					return err
				}
				p.TeamID = &t.ID
			}
			if err := app.Projects.Create(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, p.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID (2-6 letters + up to 4 digits, e.g. WEB01)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&team, "team", "", "Owning team (name or ID)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD); defaults to today when scheduling")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			detail := formatter.ProjectDetail{Project: p}
			if p.TeamID != nil {
				if detail.Team, err = app.Teams.Resolve(ctx, *p.TeamID); err != nil {
					return err
				}
				if detail.Members, err = app.Teams.ListMembers(ctx, *p.TeamID); err != nil {
					return err
				}
			}
			if detail.Sprints, err = app.Sprints.ListByProject(ctx, p.ID); err != nil {
				return err
			}
			if detail.Tasks, err = app.Tasks.ListByProject(ctx, p.ID, true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(detail))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var name, team, start string
	var clearStart bool

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Rename a project or change its team or start date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("team") {
				t, err := app.Teams.Resolve(ctx, team)
				if err != nil {
					return err
				}
				p.TeamID = &t.ID
			}
			if cmd.Flags().Changed("start") {
				if p.StartDate, err = parseDate("start date", start); err != nil {
					return err
				}
			}
			if clearStart {
				p.StartDate = nil
			}
			if err := app.Projects.Update(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", p.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&team, "team", "", "New owning team (name or ID)")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearStart, "clear-start", false, "Remove the start date")
	cmd.MarkFlagsMutuallyExclusive("start", "clear-start")

	return cmd
}

func newProjectScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule PROJECT",
		Short: "Show every assignee's calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, p.ID, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSchedule(p, tasks))
			return nil
		},
	}
}
