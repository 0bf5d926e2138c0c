package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

// AssigneeLister enumerates the assignees that have scheduled work in a project.
type AssigneeLister interface {
	ListAssignees(ctx context.Context, projectID string) ([]string, error)
}

// DefaultMaxParallelRecalcs bounds RecalculateProject when no limit is configured.
const DefaultMaxParallelRecalcs = 4

type scheduleService struct {
	tx          Transactor
	assignees   AssigneeLister
	engine      *engine
	locks       keyLocks
	maxParallel int
	observer    UseCaseObserver
}

// ScheduleOption configures a ScheduleService.
type ScheduleOption func(*scheduleService)

// WithClock fixes "now" for projects without a start date.
func WithClock(now func() time.Time) ScheduleOption {
	return func(s *scheduleService) {
		s.engine = newEngine(now)
	}
}

func WithMaxParallelRecalcs(n int) ScheduleOption {
	return func(s *scheduleService) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

func WithObserver(obs UseCaseObserver) ScheduleOption {
	return func(s *scheduleService) {
		s.observer = useCaseObserverOrNoop([]UseCaseObserver{obs})
	}
}

func NewScheduleService(tx Transactor, assignees AssigneeLister, opts ...ScheduleOption) ScheduleService {
	s := &scheduleService{
		tx:          tx,
		assignees:   assignees,
		engine:      newEngine(nil),
		maxParallel: DefaultMaxParallelRecalcs,
		observer:    NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scheduleService) RecalculateAssignee(ctx context.Context, projectID, assigneeID string) (result *AssigneeSchedule, err error) {
	fields := map[string]any{"project_id": projectID, "assignee_id": assigneeID}
	defer observe(ctx, s.observer, "recalculate-assignee", fields)(&err)

	release, err := s.locks.acquire(ctx, assigneeKey(projectID, assigneeID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.tx.InTx(ctx, func(ctx context.Context, st Stores) error {
		var txErr error
		result, txErr = s.engine.recalculate(ctx, st, projectID, assigneeID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("recalculating %s in project %s: %w", assigneeID, projectID, err)
	}
	fields["tasks"] = len(result.Tasks)
	fields["changed"] = len(result.Changed)
	return result, nil
}

func (s *scheduleService) RecalculateProject(ctx context.Context, projectID string) (result *ProjectSchedule, err error) {
	fields := map[string]any{"project_id": projectID}
	defer observe(ctx, s.observer, "recalculate-project", fields)(&err)

	err = s.tx.InTx(ctx, func(ctx context.Context, st Stores) error {
		return checkPrecedence(ctx, st, projectID)
	})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}

	ids, err := s.assignees.ListAssignees(ctx, projectID)
	if err != nil {
		return nil, err
	}
	fields["assignees"] = len(ids)

	schedules := make([]*AssigneeSchedule, len(ids))
	p := pool.New().WithMaxGoroutines(s.maxParallel).WithContext(ctx)
	for i, id := range ids {
		p.Go(func(ctx context.Context) error {
			sched, err := s.RecalculateAssignee(ctx, projectID, id)
			if err != nil {
				return err
			}
			schedules[i] = sched
			return nil
		})
	}
	poolErr := p.Wait()

	// Assignees ran side by side, so floors taken from each other's tasks
	// may be stale until the moved tasks are propagated.
	result = &ProjectSchedule{ProjectID: projectID}
	roots := newOrderedSet()
	for _, sched := range schedules {
		if sched == nil {
			continue
		}
		result.Assignees = append(result.Assignees, sched)
		for _, t := range sched.Changed {
			roots.add(t.ID)
		}
	}
	settleErr := s.settle(ctx, roots)

	end, endErr := s.RefreshProjectEndDate(ctx, projectID)
	result.ProjectEnd = end
	if err := errors.Join(poolErr, settleErr, endErr); err != nil {
		return result, err
	}
	return result, nil
}

func (s *scheduleService) PropagateFrom(ctx context.Context, taskID string) (result *PropagationResult, err error) {
	fields := map[string]any{"task_id": taskID}
	defer observe(ctx, s.observer, "propagate-dependencies", fields)(&err)

	err = s.tx.InTx(ctx, func(ctx context.Context, st Stores) error {
		var txErr error
		result, txErr = s.engine.propagate(ctx, st, taskID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("propagating from task %s: %w", taskID, err)
	}
	fields["updated"] = len(result.Updated)
	return result, nil
}

func (s *scheduleService) RefreshProjectEndDate(ctx context.Context, projectID string) (end *time.Time, err error) {
	defer observe(ctx, s.observer, "refresh-project-end-date", map[string]any{"project_id": projectID})(&err)

	err = s.tx.InTx(ctx, func(ctx context.Context, st Stores) error {
		var txErr error
		end, txErr = s.engine.refreshEndDate(ctx, st, projectID)
		return txErr
	})
	return end, err
}

// minSettleRounds is the least number of propagate/settle rounds attempted
// before giving up. Larger graphs get one round per task touched.
const minSettleRounds = 8

// Reconcile recalculates the impacted assignees, settles the tasks whose
// dates moved and finally refreshes the aggregate. Failures are collected
// and joined so one assignee's error never hides another's.
func (s *scheduleService) Reconcile(ctx context.Context, impact Impact) error {
	var errs []error
	roots := newOrderedSet(impact.Roots...)

	done := make(map[AssigneeRef]bool)
	for _, ref := range impact.Assignees {
		if done[ref] || ref.AssigneeID == "" {
			continue
		}
		done[ref] = true
		sched, err := s.RecalculateAssignee(ctx, ref.ProjectID, ref.AssigneeID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, t := range sched.Changed {
			roots.add(t.ID)
		}
	}
	if err := s.settle(ctx, roots); err != nil {
		errs = append(errs, err)
	}

	projects := newOrderedSet(impact.ProjectID)
	for _, ref := range impact.Assignees {
		projects.add(ref.ProjectID)
	}
	for _, pid := range projects.items {
		if _, err := s.RefreshProjectEndDate(ctx, pid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// settle alternates between propagating from every task whose dates moved
// and recalculating the assignees of the dependents that moved, until no
// date changes. It fails with domain.ErrScheduleNotSettled when tasks are
// still moving after the round limit.
func (s *scheduleService) settle(ctx context.Context, roots *orderedSet) error {
	var errs []error
	touched := newOrderedSet(roots.items...)

	round := 0
	for ; len(roots.items) > 0 && round < max(minSettleRounds, len(touched.items)+1); round++ {
		seen := make(map[AssigneeRef]bool)
		var refs []AssigneeRef
		for _, root := range roots.items {
			res, err := s.PropagateFrom(ctx, root)
			if err != nil {
				if !errors.Is(err, domain.ErrTaskNotFound) {
					errs = append(errs, err)
				}
				continue
			}
			for _, t := range res.Updated {
				touched.add(t.ID)
				key := AssigneeRef{ProjectID: t.ProjectID, AssigneeID: t.AssigneeID}
				if !seen[key] {
					seen[key] = true
					refs = append(refs, key)
				}
			}
		}

		next := newOrderedSet()
		for _, key := range refs {
			sched, err := s.RecalculateAssignee(ctx, key.ProjectID, key.AssigneeID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, t := range sched.Changed {
				touched.add(t.ID)
				next.add(t.ID)
			}
		}
		roots = next
	}
	if len(roots.items) > 0 {
		errs = append(errs, fmt.Errorf("%d tasks still moving after %d rounds: %w", len(roots.items), round, domain.ErrScheduleNotSettled))
	}
	return errors.Join(errs...)
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet(items ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]bool)}
	for _, it := range items {
		s.add(it)
	}
	return s
}

func (s *orderedSet) add(item string) {
	if item == "" || s.seen[item] {
		return
	}
	s.seen[item] = true
	s.items = append(s.items, item)
}
