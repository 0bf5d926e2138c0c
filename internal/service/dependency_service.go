package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/scheduler"
)

type dependencyService struct {
	deps     repository.DependencyRepo
	uow      db.UnitOfWork
	schedule ScheduleService
}

func NewDependencyService(deps repository.DependencyRepo, uow db.UnitOfWork, schedule ScheduleService) DependencyService {
	return &dependencyService{deps: deps, uow: uow, schedule: schedule}
}

// Add records that d.TaskID depends on d.DependsOnID. Edges that would close
// a cycle, either among dependencies alone or together with the assignees'
// queue order, are rejected with domain.ErrDependencyCycle.
func (s *dependencyService) Add(ctx context.Context, d *domain.TaskDependency) error {
	if d.Type == "" {
		d.Type = domain.FinishToStart
	}
	if err := validateDependency(d); err != nil {
		return err
	}

	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		var err error
		task, err = activeTask(ctx, tasks, d.TaskID)
		if err != nil {
			return err
		}
		pred, err := activeTask(ctx, tasks, d.DependsOnID)
		if err != nil {
			return err
		}

		existing, err := deps.ListPredecessors(ctx, d.TaskID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.DependsOnID == d.DependsOnID {
				return fmt.Errorf("task %s already depends on %s: %w", d.TaskID, d.DependsOnID, domain.ErrInvalidInput)
			}
		}

		cycle, err := scheduler.Reachable(d.TaskID, d.DependsOnID, func(id string) ([]string, error) {
			succ, err := deps.ListSuccessors(ctx, id)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(succ))
			for i, e := range succ {
				ids[i] = e.TaskID
			}
			return ids, nil
		})
		if err != nil {
			return err
		}
		if cycle {
			return fmt.Errorf("task %s already leads to %s: %w", d.TaskID, d.DependsOnID, domain.ErrDependencyCycle)
		}
		if err := deps.Create(ctx, d); err != nil {
			return err
		}
		return checkPrecedenceTx(ctx, tx, task.ProjectID, pred.ProjectID)
	})
	if err != nil {
		return err
	}
	return s.reconcile(ctx, task)
}

func (s *dependencyService) Remove(ctx context.Context, taskID, dependsOnID string) error {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		task, err = repository.NewSQLiteTaskRepo(tx).GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		return repository.NewSQLiteDependencyRepo(tx).Delete(ctx, taskID, dependsOnID)
	})
	if err != nil {
		return err
	}
	return s.reconcile(ctx, task)
}

func (s *dependencyService) ListForTask(ctx context.Context, taskID string) ([]domain.TaskDependency, []domain.TaskDependency, error) {
	pred, err := s.deps.ListPredecessors(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	succ, err := s.deps.ListSuccessors(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return pred, succ, nil
}

func (s *dependencyService) ListByProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error) {
	return s.deps.ListByProject(ctx, projectID)
}

// reconcile re-places the dependent on its assignee's calendar and pushes
// the result further downstream.
func (s *dependencyService) reconcile(ctx context.Context, dependent *domain.Task) error {
	if !dependent.IsScheduled() {
		return nil
	}
	return s.schedule.Reconcile(ctx, Impact{
		ProjectID: dependent.ProjectID,
		Assignees: []AssigneeRef{refOf(dependent)},
		Roots:     []string{dependent.ID},
	})
}

func validateDependency(d *domain.TaskDependency) error {
	var issues []error
	if d.TaskID == "" || d.DependsOnID == "" {
		issues = append(issues, fmt.Errorf("both tasks are required"))
	} else if d.TaskID == d.DependsOnID {
		issues = append(issues, fmt.Errorf("task %s cannot depend on itself", d.TaskID))
	}
	if !domain.ValidDependencyTypes[d.Type] {
		issues = append(issues, fmt.Errorf("unknown dependency type %q", d.Type))
	}
	if d.LagDays < 0 {
		issues = append(issues, fmt.Errorf("lag days must be non-negative, got %d", d.LagDays))
	}
	return domain.NewValidationError("dependency", issues)
}
