package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/workplan/internal/cli"
	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/alexanderramin/workplan/internal/config"
	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	formatter.SetPlain(env.NoColor || !isTerminal(os.Stdout.Fd()))

	database, err := db.OpenDB(env.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	teamRepo := repository.NewSQLiteTeamRepo(database)
	sprintRepo := repository.NewSQLiteSprintRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)
	workLogRepo := repository.NewSQLiteWorkLogRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	opts := []service.ScheduleOption{service.WithMaxParallelRecalcs(env.MaxParallelRecalcs)}
	if env.LogUseCases {
		opts = append(opts, service.WithObserver(service.NewLogUseCaseObserver(os.Stderr, env.SlogLevel())))
	}
	schedule := service.NewScheduleService(service.NewSQLiteTransactor(uow), taskRepo, opts...)

	app := &cli.App{
		Projects:     service.NewProjectService(projectRepo, teamRepo, schedule),
		Teams:        service.NewTeamService(teamRepo, projectRepo, schedule),
		Sprints:      service.NewSprintService(sprintRepo, projectRepo),
		Tasks:        service.NewTaskService(taskRepo, workLogRepo, uow, schedule),
		Ordering:     service.NewOrderingService(uow, schedule),
		Dependencies: service.NewDependencyService(depRepo, uow, schedule),
		Schedule:     schedule,
		Import:       service.NewImportService(uow, schedule),
	}
	app.IsInteractive = func() bool {
		return isTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
