package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/scheduler"
)

type orderingService struct {
	uow      db.UnitOfWork
	schedule ScheduleService
}

func NewOrderingService(uow db.UnitOfWork, schedule ScheduleService) OrderingService {
	return &orderingService{uow: uow, schedule: schedule}
}

func (s *orderingService) AppendToEnd(ctx context.Context, taskID string) (*domain.Task, error) {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		if task.IsBacklog {
			return fmt.Errorf("task %s is in the backlog: %w", taskID, domain.ErrInvalidInput)
		}
		others, err := othersOf(ctx, tasks, task.ProjectID, task.AssigneeID, task.ID)
		if err != nil {
			return err
		}
		changed := scheduler.Compact(others)
		task.SetOrder(len(others))
		if err := writeOrders(ctx, tasks, append(changed, task)); err != nil {
			return err
		}
		return checkPrecedenceTx(ctx, tx, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	return task, s.schedule.Reconcile(ctx, Impact{ProjectID: task.ProjectID, Assignees: []AssigneeRef{refOf(task)}})
}

// MoveToSprint places the task after the last task of the target sprint for
// its assignee. A nil sprint removes the task from its sprint and appends it.
func (s *orderingService) MoveToSprint(ctx context.Context, taskID string, sprintID *string) (*domain.Task, error) {
	var task *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		sprints := repository.NewSQLiteSprintRepo(tx)

		var err error
		task, err = activeTask(ctx, tasks, taskID)
		if err != nil {
			return err
		}
		if sprintID != nil {
			sp, err := sprints.GetByID(ctx, *sprintID)
			if err != nil {
				return err
			}
			if sp.ProjectID != task.ProjectID {
				return fmt.Errorf("sprint %s belongs to another project: %w", sp.Name, domain.ErrInvalidInput)
			}
		}
		task.UpdatedAt = nowUTC()

		if task.IsBacklog {
			task.SprintID = sprintID
			return tasks.Update(ctx, task)
		}

		others, err := othersOf(ctx, tasks, task.ProjectID, task.AssigneeID, task.ID)
		if err != nil {
			return err
		}
		var changed []*domain.Task
		if sprintID == nil {
			task.SprintID = nil
			changed = scheduler.Compact(others)
			task.SetOrder(len(others))
		} else {
			positions, err := sprintPositions(ctx, sprints, task.ProjectID)
			if err != nil {
				return err
			}
			changed = scheduler.MoveIntoSprint(others, task, *sprintID, positions)
		}
		for _, t := range changed {
			if t.ID == task.ID {
				continue
			}
			if err := tasks.UpdateSchedule(ctx, t); err != nil {
				return err
			}
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		return checkPrecedenceTx(ctx, tx, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	if task.IsBacklog {
		return task, nil
	}
	return task, s.schedule.Reconcile(ctx, Impact{ProjectID: task.ProjectID, Assignees: []AssigneeRef{refOf(task)}})
}

// BulkReorder validates every move before writing any of them. Each touched
// assignee's run is renumbered densely afterwards. An order that queues a
// task behind its own dependents fails with domain.ErrDependencyCycle and
// writes nothing.
func (s *orderingService) BulkReorder(ctx context.Context, projectID string, moves []ReorderMove) error {
	var touched []AssigneeRef
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)

		var issues []error
		byAssignee := make(map[string]map[string]int)
		var assignees []string
		seen := make(map[string]bool)
		for i, m := range moves {
			if seen[m.TaskID] {
				issues = append(issues, fmt.Errorf("move %d: task %s listed twice", i, m.TaskID))
				continue
			}
			seen[m.TaskID] = true
			if m.Order < 0 {
				issues = append(issues, fmt.Errorf("move %d: order %d must be non-negative", i, m.Order))
			}
			t, err := tasks.GetByID(ctx, m.TaskID)
			if err != nil || !t.IsActive() {
				issues = append(issues, fmt.Errorf("move %d: task %s: %w", i, m.TaskID, domain.ErrTaskNotFound))
				continue
			}
			if t.ProjectID != projectID {
				issues = append(issues, fmt.Errorf("move %d: task %s does not belong to project %s", i, m.TaskID, projectID))
				continue
			}
			if t.IsBacklog {
				issues = append(issues, fmt.Errorf("move %d: task %s is in the backlog", i, m.TaskID))
				continue
			}
			if byAssignee[t.AssigneeID] == nil {
				byAssignee[t.AssigneeID] = make(map[string]int)
				assignees = append(assignees, t.AssigneeID)
			}
			byAssignee[t.AssigneeID][t.ID] = m.Order
		}
		if err := domain.NewValidationError("bulk reorder", issues); err != nil {
			return err
		}

		for _, assignee := range assignees {
			list, err := tasks.ListByAssignee(ctx, projectID, assignee)
			if err != nil {
				return err
			}
			if err := writeOrders(ctx, tasks, scheduler.ApplyReorder(list, byAssignee[assignee])); err != nil {
				return err
			}
			touched = append(touched, AssigneeRef{ProjectID: projectID, AssigneeID: assignee})
		}
		return checkPrecedenceTx(ctx, tx, projectID)
	})
	if err != nil {
		return err
	}
	return s.schedule.Reconcile(ctx, Impact{ProjectID: projectID, Assignees: touched})
}

func (s *orderingService) Compact(ctx context.Context, projectID, assigneeID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID); err != nil {
			return err
		}
		return compactAssignee(ctx, repository.NewSQLiteTaskRepo(tx), projectID, assigneeID, "")
	})
	if err != nil {
		return err
	}
	return s.schedule.Reconcile(ctx, Impact{
		ProjectID: projectID,
		Assignees: []AssigneeRef{{ProjectID: projectID, AssigneeID: assigneeID}},
	})
}

// CompleteSprint marks the sprint completed and, for every assignee of the
// project, moves completed tasks ahead of open ones keeping relative order.
func (s *orderingService) CompleteSprint(ctx context.Context, sprintID string) (*domain.Sprint, error) {
	var sprint *domain.Sprint
	var touched []AssigneeRef
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sprints := repository.NewSQLiteSprintRepo(tx)
		tasks := repository.NewSQLiteTaskRepo(tx)

		var err error
		sprint, err = sprints.GetByID(ctx, sprintID)
		if err != nil {
			return err
		}
		if sprint.Status == domain.SprintCompleted {
			return fmt.Errorf("sprint %s is already completed: %w", sprint.Name, domain.ErrInvalidInput)
		}
		now := nowUTC()
		sprint.Status = domain.SprintCompleted
		sprint.CompletedAt = &now
		if err := sprints.Update(ctx, sprint); err != nil {
			return err
		}

		assignees, err := tasks.ListAssignees(ctx, sprint.ProjectID)
		if err != nil {
			return err
		}
		for _, assignee := range assignees {
			list, err := tasks.ListByAssignee(ctx, sprint.ProjectID, assignee)
			if err != nil {
				return err
			}
			if err := writeOrders(ctx, tasks, scheduler.CompletedFirst(list)); err != nil {
				return err
			}
			touched = append(touched, AssigneeRef{ProjectID: sprint.ProjectID, AssigneeID: assignee})
		}
		return checkPrecedenceTx(ctx, tx, sprint.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	return sprint, s.schedule.Reconcile(ctx, Impact{ProjectID: sprint.ProjectID, Assignees: touched})
}
