package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/scheduler"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// validateHours rejects negative, NaN and infinite hour quantities and
// anything above domain.MaxTaskHours.
func validateHours(field string, h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v: %w", field, h, domain.ErrInvalidInput)
	}
	if h > domain.MaxTaskHours {
		return fmt.Errorf("%s must be at most %d, got %v: %w", field, domain.MaxTaskHours, h, domain.ErrInvalidInput)
	}
	return nil
}

// activeTask loads a task and rejects deleted ones as not found.
func activeTask(ctx context.Context, tasks repository.TaskRepo, id string) (*domain.Task, error) {
	t, err := tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
	}
	return t, nil
}

// othersOf returns the assignee's scheduled tasks without the excluded one.
func othersOf(ctx context.Context, tasks repository.TaskRepo, projectID, assigneeID, excludeID string) ([]*domain.Task, error) {
	list, err := tasks.ListByAssignee(ctx, projectID, assigneeID)
	if err != nil {
		return nil, err
	}
	out := list[:0]
	for _, t := range list {
		if t.ID != excludeID {
			out = append(out, t)
		}
	}
	return out, nil
}

// compactAssignee renumbers an assignee's run densely and writes the moved orders.
func compactAssignee(ctx context.Context, tasks repository.TaskRepo, projectID, assigneeID, excludeID string) error {
	list, err := othersOf(ctx, tasks, projectID, assigneeID, excludeID)
	if err != nil {
		return err
	}
	return writeOrders(ctx, tasks, scheduler.Compact(list))
}

func writeOrders(ctx context.Context, tasks repository.TaskRepo, changed []*domain.Task) error {
	for _, t := range changed {
		if err := tasks.UpdateSchedule(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// requireMember checks assignee membership when the project has a team.
func requireMember(ctx context.Context, teams repository.TeamRepo, project *domain.Project, assigneeID string) error {
	if project.TeamID == nil {
		return nil
	}
	_, err := teams.GetMember(ctx, *project.TeamID, assigneeID)
	return err
}

// successorRefs lists the assignees owning scheduled finish-to-start
// dependents of taskID.
func successorRefs(ctx context.Context, tx db.DBTX, taskID string) ([]AssigneeRef, error) {
	edges, err := repository.NewSQLiteDependencyRepo(tx).ListSuccessors(ctx, taskID)
	if err != nil {
		return nil, err
	}
	tasks := repository.NewSQLiteTaskRepo(tx)
	var refs []AssigneeRef
	for _, e := range edges {
		if !e.Drives() {
			continue
		}
		dep, err := tasks.GetByID(ctx, e.TaskID)
		if err != nil {
			return nil, err
		}
		if dep.IsScheduled() {
			refs = append(refs, AssigneeRef{ProjectID: dep.ProjectID, AssigneeID: dep.AssigneeID})
		}
	}
	return refs, nil
}

func refOf(t *domain.Task) AssigneeRef {
	return AssigneeRef{ProjectID: t.ProjectID, AssigneeID: t.AssigneeID}
}
