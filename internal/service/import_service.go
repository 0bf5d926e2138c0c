package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/importer"
	"github.com/alexanderramin/workplan/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	schedule ScheduleService
}

func NewImportService(uow db.UnitOfWork, schedule ScheduleService) ImportService {
	return &importService{uow: uow, schedule: schedule}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	plan, err := importer.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	return s.ImportPlan(ctx, plan)
}

// ImportPlan validates the whole plan, writes it in one transaction and then
// schedules the new project. Nothing is written when any item is invalid.
func (s *importService) ImportPlan(ctx context.Context, schema *importer.PlanSchema) (*ImportResult, error) {
	if err := domain.NewValidationError("import", importer.ValidatePlan(schema)); err != nil {
		return nil, err
	}

	plan, err := importer.Convert(schema, nowUTC())
	if err != nil {
		return nil, fmt.Errorf("converting plan: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		teams := repository.NewSQLiteTeamRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)

		if err := checkImportConflicts(ctx, teams, projects, plan); err != nil {
			return err
		}

		if err := teams.Create(ctx, plan.Team); err != nil {
			return fmt.Errorf("creating team: %w", err)
		}
		for _, m := range plan.Members {
			if err := teams.UpsertMember(ctx, m); err != nil {
				return fmt.Errorf("adding member %s: %w", m.UserID, err)
			}
		}
		if err := projects.Create(ctx, plan.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}

		sprints := repository.NewSQLiteSprintRepo(tx)
		for _, sp := range plan.Sprints {
			if err := sprints.Create(ctx, sp); err != nil {
				return fmt.Errorf("creating sprint %s: %w", sp.Name, err)
			}
		}

		tasks := repository.NewSQLiteTaskRepo(tx)
		for _, t := range plan.Tasks {
			if err := tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Title, err)
			}
		}

		deps := repository.NewSQLiteDependencyRepo(tx)
		for _, d := range plan.Dependencies {
			if err := deps.Create(ctx, d); err != nil {
				return fmt.Errorf("creating dependency: %w", err)
			}
		}
		return checkPrecedenceTx(ctx, tx, plan.Project.ID)
	})
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Team:            plan.Team,
		Project:         plan.Project,
		MemberCount:     len(plan.Members),
		SprintCount:     len(plan.Sprints),
		TaskCount:       len(plan.Tasks),
		DependencyCount: len(plan.Dependencies),
	}

	sched, err := s.schedule.RecalculateProject(ctx, plan.Project.ID)
	result.Schedule = sched
	if err != nil {
		return result, fmt.Errorf("project %s imported, scheduling failed: %w", plan.Project.ShortID, err)
	}
	if sched != nil && sched.ProjectEnd != nil {
		end := *sched.ProjectEnd
		result.Project.ActualExpectedEndDate = &end
	}
	return result, nil
}

func checkImportConflicts(ctx context.Context, teams repository.TeamRepo, projects repository.ProjectRepo, plan *importer.Plan) error {
	var issues []error
	if _, err := teams.GetByName(ctx, plan.Team.Name); err == nil {
		issues = append(issues, fmt.Errorf("team %q already exists", plan.Team.Name))
	} else if !errors.Is(err, domain.ErrTeamNotFound) {
		return err
	}
	if _, err := projects.GetByShortID(ctx, plan.Project.ShortID); err == nil {
		issues = append(issues, fmt.Errorf("project %s already exists", plan.Project.ShortID))
	} else if !errors.Is(err, domain.ErrProjectNotFound) {
		return err
	}
	return domain.NewValidationError("import", issues)
}
