package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/spf13/cobra"
)

func newTeamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams and member capacity",
	}

	cmd.AddCommand(
		newTeamAddCmd(app),
		newTeamListCmd(app),
		newTeamMemberSetCmd(app),
		newTeamMemberListCmd(app),
	)

	return cmd
}

func newTeamAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Teams.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created team %s (%s)\n", t.Name, t.ID[:8])
			return nil
		},
	}
}

func newTeamListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			teams, err := app.Teams.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(teams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No teams found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTeamList(teams))
			return nil
		},
	}
}

func newTeamMemberSetCmd(app *App) *cobra.Command {
	var hours float64
	var days, displayName string

	cmd := &cobra.Command{
		Use:   "member-set TEAM USER",
		Short: "Add a member or change a member's capacity",
		Long: "Add a member or change a member's capacity. Changing capacity\n" +
			"recalculates the member's work in every project the team owns.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			team, err := app.Teams.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			workDays, err := domain.ParseWeekdaySet(days)
			if err != nil {
				return err
			}
			m := &domain.TeamMember{
				TeamID:      team.ID,
				UserID:      args[1],
				DisplayName: displayName,
				Capacity:    domain.WorkCapacity{DailyWorkHours: hours, WorkDays: workDays},
			}
			if err := app.Teams.SetMember(ctx, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s to %s\n", m.UserID, team.Name, formatter.FormatCapacity(m.Capacity))
			return nil
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 8, "Working hours per day")
	cmd.Flags().StringVar(&days, "days", "mon,tue,wed,thu,fri", "Working days (names or numbers, Sunday = 0)")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the user ID)")

	return cmd
}

func newTeamMemberListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "member-list TEAM",
		Short: "List a team's members and their capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			team, err := app.Teams.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			members, err := app.Teams.ListMembers(ctx, team.ID)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Team %s has no members.\n", team.Name)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox(team.Name, formatter.FormatMemberTable(members)))
			return nil
		},
	}
}
