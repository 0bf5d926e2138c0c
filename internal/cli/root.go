package cli

import (
	"github.com/alexanderramin/workplan/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects     service.ProjectService
	Teams        service.TeamService
	Sprints      service.SprintService
	Tasks        service.TaskService
	Ordering     service.OrderingService
	Dependencies service.DependencyService
	Schedule     service.ScheduleService
	Import       service.ImportService

	// IsInteractive reports whether prompts can be shown. Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh prompt.
	Confirm func(title string) (bool, error)
}

// NewRootCmd creates the top-level "workplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "workplan",
		Short:         "Capacity-aware task scheduling for teams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTeamCmd(app),
		newSprintCmd(app),
		newTaskCmd(app),
		newOrderCmd(app),
		newDepCmd(app),
		newRecalcCmd(app),
		newImportCmd(app),
	)

	return root
}
