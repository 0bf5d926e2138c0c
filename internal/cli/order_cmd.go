package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/service"
	"github.com/spf13/cobra"
)

func newOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Change task order within an assignee's queue",
	}

	cmd.AddCommand(
		newOrderSetCmd(app),
		newOrderCompactCmd(app),
	)

	return cmd
}

func newOrderSetCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "set TASK=ORDER...",
		Short: "Place tasks at explicit positions; all moves are validated first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			moves := make([]service.ReorderMove, 0, len(args))
			for _, arg := range args {
				ref, pos, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected TASK=ORDER, got %q: %w", arg, domain.ErrInvalidInput)
				}
				order, err := strconv.Atoi(pos)
				if err != nil {
					return fmt.Errorf("invalid order in %q: %w", arg, domain.ErrInvalidInput)
				}
				t, err := resolveTask(ctx, app, ref)
				if err != nil {
					return err
				}
				moves = append(moves, service.ReorderMove{TaskID: t.ID, Order: order})
			}
			if err := app.Ordering.BulkReorder(ctx, p.ID, moves); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d tasks\n", len(moves))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newOrderCompactCmd(app *App) *cobra.Command {
	var project, assignee string

	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Renumber an assignee's tasks 0..n-1",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, project)
			if err != nil {
				return err
			}
			if err := app.Ordering.Compact(ctx, p.ID, assignee); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compacted %s in %s\n", assignee, p.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (short ID or ID)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user ID")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("assignee")

	return cmd
}
