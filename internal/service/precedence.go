package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/scheduler"
)

// checkPrecedence fails with domain.ErrDependencyCycle when the placement
// orders of the projects' assignees and the finish-to-start edges between
// scheduled tasks cannot all hold at once. Projects reached through
// cross-project edges are checked together with the given ones.
func checkPrecedence(ctx context.Context, s Stores, projectIDs ...string) error {
	projects := newOrderedSet(projectIDs...)
	known := make(map[string]*domain.Task)
	var chains [][]string
	preds := make(map[string][]string)

	// follow records the project of a scheduled task at the other end of an edge.
	follow := func(id string) error {
		t, ok := known[id]
		if !ok {
			var err error
			t, err = s.Tasks.GetByID(ctx, id)
			if errors.Is(err, domain.ErrTaskNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			known[id] = t
		}
		if t.IsScheduled() {
			projects.add(t.ProjectID)
		}
		return nil
	}

	for i := 0; i < len(projects.items); i++ {
		projectID := projects.items[i]
		assignees, err := s.Tasks.ListAssignees(ctx, projectID)
		if err != nil {
			return err
		}
		for _, assignee := range assignees {
			tasks, err := s.Tasks.ListByAssignee(ctx, projectID, assignee)
			if err != nil {
				return err
			}
			ordered, edges, err := placementOrder(ctx, s, projectID, tasks)
			if err != nil {
				return fmt.Errorf("assignee %s: %w", assignee, err)
			}
			chain := make([]string, len(ordered))
			for j, t := range ordered {
				chain[j] = t.ID
				known[t.ID] = t
				for _, edge := range edges[t.ID] {
					if !edge.Drives() {
						continue
					}
					preds[t.ID] = append(preds[t.ID], edge.DependsOnID)
					if err := follow(edge.DependsOnID); err != nil {
						return err
					}
				}
				succ, err := s.Dependencies.ListSuccessors(ctx, t.ID)
				if err != nil {
					return err
				}
				for _, edge := range succ {
					if edge.Drives() {
						if err := follow(edge.TaskID); err != nil {
							return err
						}
					}
				}
			}
			chains = append(chains, chain)
		}
	}
	return scheduler.CheckPrecedence(chains, preds)
}

// checkPrecedenceTx runs checkPrecedence against the stores of an open
// transaction.
func checkPrecedenceTx(ctx context.Context, tx db.DBTX, projectIDs ...string) error {
	return checkPrecedence(ctx, sqliteStores(tx), projectIDs...)
}
