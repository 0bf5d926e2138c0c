package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/scheduler"
	"github.com/google/uuid"
)

type taskService struct {
	tasks    repository.TaskRepo
	workLogs repository.WorkLogRepo
	uow      db.UnitOfWork
	schedule ScheduleService
}

func NewTaskService(tasks repository.TaskRepo, workLogs repository.WorkLogRepo, uow db.UnitOfWork, schedule ScheduleService) TaskService {
	return &taskService{tasks: tasks, workLogs: workLogs, uow: uow, schedule: schedule}
}

func validateTask(t *domain.Task) error {
	var issues []error
	if strings.TrimSpace(t.Title) == "" {
		issues = append(issues, fmt.Errorf("title is required"))
	}
	if strings.TrimSpace(t.AssigneeID) == "" {
		issues = append(issues, fmt.Errorf("assignee is required"))
	}
	if err := validateHours("estimated hours", t.EstimatedHours); err != nil {
		issues = append(issues, err)
	}
	if err := validateHours("actual hours", t.ActualHours); err != nil {
		issues = append(issues, err)
	}
	if t.Status.Rank() < 0 {
		issues = append(issues, fmt.Errorf("unknown status %q", t.Status))
	}
	return domain.NewValidationError("task", issues)
}

// Create inserts the task at the end of its assignee's run, or in the
// backlog without an order or dates.
func (s *taskService) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}
	if err := validateTask(t); err != nil {
		return err
	}
	now := nowUTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.DeletedAt = nil
	t.ClearSchedule()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		project, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, t.ProjectID)
		if err != nil {
			return err
		}
		if err := requireMember(ctx, repository.NewSQLiteTeamRepo(tx), project, t.AssigneeID); err != nil {
			return err
		}
		if t.SprintID != nil {
			sp, err := repository.NewSQLiteSprintRepo(tx).GetByID(ctx, *t.SprintID)
			if err != nil {
				return err
			}
			if sp.ProjectID != t.ProjectID {
				return fmt.Errorf("sprint %s belongs to another project: %w", sp.Name, domain.ErrInvalidInput)
			}
		}

		if t.IsBacklog {
			t.Order = nil
		} else {
			others, err := tasks.ListByAssignee(ctx, t.ProjectID, t.AssigneeID)
			if err != nil {
				return err
			}
			t.SetOrder(scheduler.NextOrder(others))
		}
		return tasks.Create(ctx, t)
	})
	if err != nil {
		return err
	}
	if t.IsBacklog {
		return nil
	}
	return s.reconcile(ctx, t, []AssigneeRef{refOf(t)}, nil)
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return activeTask(ctx, s.tasks, id)
}

func (s *taskService) ListByProject(ctx context.Context, projectID string, includeBacklog bool) ([]*domain.Task, error) {
	return s.tasks.ListByProject(ctx, projectID, includeBacklog)
}

// Update applies the patch. Moving a task to another assignee compacts the
// old run and appends the task to the new one, unless that queues it behind
// its own dependents (domain.ErrDependencyCycle). Completion flips and
// estimate changes propagate to dependents.
func (s *taskService) Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error) {
	var task *domain.Task
	var refs []AssigneeRef
	var roots []string

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, id)
		if err != nil {
			return err
		}
		before := *task

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.EstimatedHours != nil {
			task.EstimatedHours = *patch.EstimatedHours
		}
		if patch.AssigneeID != nil {
			task.AssigneeID = *patch.AssigneeID
		}
		if err := validateTask(task); err != nil {
			return err
		}

		if task.AssigneeID != before.AssigneeID {
			project, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, task.ProjectID)
			if err != nil {
				return err
			}
			if err := requireMember(ctx, repository.NewSQLiteTeamRepo(tx), project, task.AssigneeID); err != nil {
				return err
			}
			if !task.IsBacklog {
				if err := compactAssignee(ctx, tasks, task.ProjectID, before.AssigneeID, task.ID); err != nil {
					return err
				}
				others, err := othersOf(ctx, tasks, task.ProjectID, task.AssigneeID, task.ID)
				if err != nil {
					return err
				}
				task.SetOrder(scheduler.NextOrder(others))
				refs = append(refs, AssigneeRef{ProjectID: task.ProjectID, AssigneeID: before.AssigneeID})
			}
		}
		if !task.IsBacklog {
			refs = append(refs, refOf(task))
			if before.Status.IsTerminal() != task.Status.IsTerminal() || before.EstimatedHours != task.EstimatedHours {
				roots = append(roots, task.ID)
			}
		}

		task.UpdatedAt = nowUTC()
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		if task.AssigneeID != before.AssigneeID && !task.IsBacklog {
			return checkPrecedenceTx(ctx, tx, task.ProjectID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return task, nil
	}
	return task, s.reconcile(ctx, task, refs, roots)
}

// LogHours records a work log and adds its hours to the task's actual hours.
func (s *taskService) LogHours(ctx context.Context, taskID string, hours float64, note string) (*domain.WorkLog, error) {
	if err := validateHours("logged hours", hours); err != nil {
		return nil, err
	}
	if hours == 0 {
		return nil, fmt.Errorf("logged hours must be positive: %w", domain.ErrInvalidInput)
	}

	now := nowUTC()
	log := &domain.WorkLog{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Hours:     hours,
		LoggedAt:  now,
		Note:      note,
		CreatedAt: now,
	}
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		if err := validateHours("actual hours", task.ActualHours+hours); err != nil {
			return err
		}
		if err := repository.NewSQLiteWorkLogRepo(tx).Create(ctx, log); err != nil {
			return err
		}
		task.ActualHours += hours
		task.UpdatedAt = now
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	if task.IsBacklog {
		return log, nil
	}
	return log, s.reconcile(ctx, task, []AssigneeRef{refOf(task)}, []string{task.ID})
}

func (s *taskService) ListWorkLogs(ctx context.Context, taskID string) ([]*domain.WorkLog, error) {
	return s.workLogs.ListByTask(ctx, taskID)
}

func (s *taskService) MoveToBacklog(ctx context.Context, taskID string) (*domain.Task, error) {
	var task *domain.Task
	var refs []AssigneeRef
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		if task.IsBacklog {
			return nil
		}
		task.SendToBacklog(nowUTC())
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		if err := compactAssignee(ctx, tasks, task.ProjectID, task.AssigneeID, task.ID); err != nil {
			return err
		}
		succ, err := successorRefs(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		refs = append([]AssigneeRef{refOf(task)}, succ...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return task, nil
	}
	return task, s.reconcile(ctx, task, refs, nil)
}

func (s *taskService) MoveFromBacklog(ctx context.Context, taskID string) (*domain.Task, error) {
	var task *domain.Task
	moved := false
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		if !task.IsBacklog {
			return nil
		}
		others, err := tasks.ListByAssignee(ctx, task.ProjectID, task.AssigneeID)
		if err != nil {
			return err
		}
		task.IsBacklog = false
		task.SetOrder(scheduler.NextOrder(others))
		task.UpdatedAt = nowUTC()
		moved = true
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		return checkPrecedenceTx(ctx, tx, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	if !moved {
		return task, nil
	}
	return task, s.reconcile(ctx, task, []AssigneeRef{refOf(task)}, []string{task.ID})
}

// Delete soft-deletes the task, drops its dependency edges and closes the
// gap it leaves in its assignee's run.
func (s *taskService) Delete(ctx context.Context, taskID string) error {
	var task *domain.Task
	var refs []AssigneeRef
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		succ, err := successorRefs(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		if err := tasks.SoftDelete(ctx, task.ID, nowUTC()); err != nil {
			return err
		}
		if err := repository.NewSQLiteDependencyRepo(tx).DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if !task.IsBacklog {
			if err := compactAssignee(ctx, tasks, task.ProjectID, task.AssigneeID, task.ID); err != nil {
				return err
			}
			refs = append(refs, refOf(task))
		}
		refs = append(refs, succ...)
		return nil
	})
	if err != nil {
		return err
	}
	return s.reconcile(ctx, task, refs, nil)
}

func (s *taskService) reconcile(ctx context.Context, t *domain.Task, refs []AssigneeRef, roots []string) error {
	if err := s.schedule.Reconcile(ctx, Impact{ProjectID: t.ProjectID, Assignees: refs, Roots: roots}); err != nil {
		return fmt.Errorf("task %s saved, scheduling failed: %w", t.ID, err)
	}
	return nil
}
