package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/scheduler"
)

// AssigneeSchedule is the outcome of one assignee recalculation.
type AssigneeSchedule struct {
	ProjectID  string
	AssigneeID string
	Tasks      []*domain.Task // placement order
	Changed    []*domain.Task
	ProjectEnd *time.Time
}

// PropagationResult lists the dependents whose schedule moved.
type PropagationResult struct {
	RootID   string
	Updated  []*domain.Task
	Projects []string
}

// engine holds the scheduling algorithms. It only talks to Stores, so the
// same code runs against SQLite or an in-memory fake.
type engine struct {
	now func() time.Time
}

func newEngine(now func() time.Time) *engine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &engine{now: now}
}

// recalculate rebuilds one assignee's calendar from scratch and places every
// active non-backlog task on it. Nothing is written until every task has been
// placed.
func (e *engine) recalculate(ctx context.Context, s Stores, projectID, assigneeID string) (*AssigneeSchedule, error) {
	result := &AssigneeSchedule{ProjectID: projectID, AssigneeID: assigneeID}

	tasks, err := s.Tasks.ListByAssignee(ctx, projectID, assigneeID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return result, nil
	}

	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	capacity, err := resolveCapacity(ctx, s, project, assigneeID)
	if err != nil {
		return nil, err
	}
	cal, err := scheduler.NewCalendar(project.ScheduleAnchor(e.now()), capacity)
	if err != nil {
		return nil, fmt.Errorf("assignee %s: %w", assigneeID, err)
	}
	ordered, edges, err := placementOrder(ctx, s, projectID, tasks)
	if err != nil {
		return nil, fmt.Errorf("assignee %s: %w", assigneeID, err)
	}
	known := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		known[t.ID] = t
	}

	var changed []*domain.Task
	for _, t := range ordered {
		floor, err := e.floorFrom(ctx, s, edges[t.ID], capacity.WorkDays, known)
		if err != nil {
			return nil, err
		}
		before := scheduleOf(t)
		if err := place(cal, t, floor); err != nil {
			return nil, fmt.Errorf("placing task %s: %w", t.ID, err)
		}
		if before != scheduleOf(t) {
			changed = append(changed, t)
		}
	}

	for _, t := range changed {
		if err := s.Tasks.UpdateSchedule(ctx, t); err != nil {
			return nil, err
		}
	}
	result.Tasks = ordered
	result.Changed = changed

	result.ProjectEnd, err = e.refreshEndDate(ctx, s, projectID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// placementOrder returns one assignee's tasks in the order their calendar
// receives them, together with each task's predecessor edges. A predecessor
// owned by the same assignee goes before its dependents even when it sits
// later in the sequence.
func placementOrder(ctx context.Context, s Stores, projectID string, tasks []*domain.Task) ([]*domain.Task, map[string][]domain.TaskDependency, error) {
	positions, err := sprintPositions(ctx, s.Sprints, projectID)
	if err != nil {
		return nil, nil, err
	}
	own := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		own[t.ID] = true
	}

	ordered := scheduler.OrderForRecalculation(tasks, positions)
	edges := make(map[string][]domain.TaskDependency, len(ordered))
	local := make(map[string][]string)
	for _, t := range ordered {
		preds, err := s.Dependencies.ListPredecessors(ctx, t.ID)
		if err != nil {
			return nil, nil, err
		}
		edges[t.ID] = preds
		for _, edge := range preds {
			if edge.Drives() && own[edge.DependsOnID] {
				local[t.ID] = append(local[t.ID], edge.DependsOnID)
			}
		}
	}
	ordered, err = scheduler.PredecessorsFirst(ordered, local)
	if err != nil {
		return nil, nil, err
	}
	return ordered, edges, nil
}

// propagate walks finish-to-start successors of rootID depth first and
// reschedules each dependent on a fresh calendar of its own assignee.
// Reaching a task that is still on the current path fails with
// domain.ErrDependencyCycle.
func (e *engine) propagate(ctx context.Context, s Stores, rootID string) (*PropagationResult, error) {
	root, err := s.Tasks.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}

	w := &walker{
		engine:     e,
		stores:     s,
		known:      map[string]*domain.Task{root.ID: root},
		inPath:     make(map[string]bool),
		visited:    make(map[string]bool),
		changed:    make(map[string]*domain.Task),
		capacities: make(map[string]domain.WorkCapacity),
		projects:   make(map[string]*domain.Project),
	}
	if err := w.visit(ctx, root); err != nil {
		return nil, err
	}

	result := &PropagationResult{RootID: rootID}
	touched := map[string]bool{root.ProjectID: true}
	projectOrder := []string{root.ProjectID}
	for _, id := range w.order {
		t := w.changed[id]
		if err := s.Tasks.UpdateSchedule(ctx, t); err != nil {
			return nil, err
		}
		result.Updated = append(result.Updated, t)
		if !touched[t.ProjectID] {
			touched[t.ProjectID] = true
			projectOrder = append(projectOrder, t.ProjectID)
		}
	}
	for _, pid := range projectOrder {
		if _, err := e.refreshEndDate(ctx, s, pid); err != nil {
			return nil, err
		}
	}
	result.Projects = projectOrder
	return result, nil
}

// refreshEndDate writes max(endDate) of the project's scheduled tasks to the
// project. It leaves the project untouched when no task carries a date.
func (e *engine) refreshEndDate(ctx context.Context, s Stores, projectID string) (*time.Time, error) {
	end, err := s.Tasks.MaxEndDate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if end == nil {
		return nil, nil
	}
	if err := s.Projects.SetActualExpectedEndDate(ctx, projectID, *end); err != nil {
		return nil, err
	}
	return end, nil
}

// dependencyFloor is the earliest day t may start given its finish-to-start
// predecessors. The zero time means unconstrained.
func (e *engine) dependencyFloor(ctx context.Context, s Stores, t *domain.Task, days domain.WeekdaySet, known map[string]*domain.Task) (time.Time, error) {
	edges, err := s.Dependencies.ListPredecessors(ctx, t.ID)
	if err != nil {
		return time.Time{}, err
	}
	return e.floorFrom(ctx, s, edges, days, known)
}

func (e *engine) floorFrom(ctx context.Context, s Stores, edges []domain.TaskDependency, days domain.WeekdaySet, known map[string]*domain.Task) (time.Time, error) {
	var floor time.Time
	for _, edge := range edges {
		if !edge.Drives() {
			continue
		}
		pred, ok := known[edge.DependsOnID]
		if !ok {
			var err error
			pred, err = s.Tasks.GetByID(ctx, edge.DependsOnID)
			if err != nil {
				return time.Time{}, err
			}
			known[pred.ID] = pred
		}
		if !pred.IsScheduled() || pred.EndDate == nil {
			continue
		}
		start := scheduler.DependentStart(*pred.EndDate, edge.LagDays, days)
		if start.After(floor) {
			floor = start
		}
	}
	return floor, nil
}

type walker struct {
	engine     *engine
	stores     Stores
	known      map[string]*domain.Task
	inPath     map[string]bool
	visited    map[string]bool
	changed    map[string]*domain.Task
	order      []string
	capacities map[string]domain.WorkCapacity
	projects   map[string]*domain.Project
}

func (w *walker) visit(ctx context.Context, t *domain.Task) error {
	w.inPath[t.ID] = true
	w.visited[t.ID] = true
	defer delete(w.inPath, t.ID)

	edges, err := w.stores.Dependencies.ListSuccessors(ctx, t.ID)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		if !edge.Drives() {
			continue
		}
		if w.inPath[edge.TaskID] {
			return fmt.Errorf("task %s depends on %s: %w", edge.TaskID, t.ID, domain.ErrDependencyCycle)
		}
		dep, err := w.task(ctx, edge.TaskID)
		if err != nil {
			return err
		}
		if !dep.IsScheduled() {
			continue
		}
		moved, err := w.reschedule(ctx, dep)
		if err != nil {
			return err
		}
		// A dependent reached again through another predecessor only needs
		// another descent when its dates moved.
		if w.visited[dep.ID] && !moved {
			continue
		}
		if err := w.visit(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) reschedule(ctx context.Context, dep *domain.Task) (bool, error) {
	project, err := w.project(ctx, dep.ProjectID)
	if err != nil {
		return false, err
	}
	key := assigneeKey(project.ID, dep.AssigneeID)
	capacity, ok := w.capacities[key]
	if !ok {
		capacity, err = resolveCapacity(ctx, w.stores, project, dep.AssigneeID)
		if err != nil {
			return false, err
		}
		w.capacities[key] = capacity
	}

	floor, err := w.engine.dependencyFloor(ctx, w.stores, dep, capacity.WorkDays, w.known)
	if err != nil {
		return false, err
	}
	if floor.IsZero() {
		return false, nil
	}
	cal, err := scheduler.NewCalendar(floor, capacity)
	if err != nil {
		return false, fmt.Errorf("assignee %s: %w", dep.AssigneeID, err)
	}

	before := scheduleOf(dep)
	if err := place(cal, dep, floor); err != nil {
		return false, fmt.Errorf("placing task %s: %w", dep.ID, err)
	}
	if before == scheduleOf(dep) {
		return false, nil
	}
	if _, seen := w.changed[dep.ID]; !seen {
		w.order = append(w.order, dep.ID)
	}
	w.changed[dep.ID] = dep
	return true, nil
}

func (w *walker) task(ctx context.Context, id string) (*domain.Task, error) {
	if t, ok := w.known[id]; ok {
		return t, nil
	}
	t, err := w.stores.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.known[id] = t
	return t, nil
}

func (w *walker) project(ctx context.Context, id string) (*domain.Project, error) {
	if p, ok := w.projects[id]; ok {
		return p, nil
	}
	p, err := w.stores.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.projects[id] = p
	return p, nil
}

// place allocates t's hours-to-occupy on cal and derives the baseline from
// the estimate alone, anchored at the same start.
func place(cal *scheduler.Calendar, t *domain.Task, notBefore time.Time) error {
	baseline, err := cal.Peek(t.EstimatedHours, notBefore)
	if err != nil {
		return err
	}
	alloc, err := cal.Allocate(t.HoursToOccupy(), notBefore)
	if err != nil {
		return err
	}
	t.StartDate = domain.DatePtr(alloc.Start)
	t.EndDate = domain.DatePtr(alloc.End)
	t.ExpectedStartDate = domain.DatePtr(alloc.Start)
	t.ExpectedEndDate = domain.DatePtr(baseline.End)
	return nil
}

func resolveCapacity(ctx context.Context, s Stores, project *domain.Project, assigneeID string) (domain.WorkCapacity, error) {
	if project.TeamID == nil {
		return domain.WorkCapacity{}, fmt.Errorf("project %s: %w", project.DisplayID(), domain.ErrMissingTeamAssignment)
	}
	capacity, err := s.Capacity.ResolveCapacity(ctx, *project.TeamID, assigneeID)
	if err != nil {
		return domain.WorkCapacity{}, err
	}
	if err := capacity.Validate(); err != nil {
		return domain.WorkCapacity{}, fmt.Errorf("assignee %s: %w", assigneeID, err)
	}
	return capacity, nil
}

func sprintPositions(ctx context.Context, sprints SprintStore, projectID string) (scheduler.SprintPositions, error) {
	list, err := sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	positions := make(scheduler.SprintPositions, len(list))
	for _, sp := range list {
		positions[sp.ID] = sp.Position
	}
	return positions, nil
}

// schedule is a comparable snapshot of the engine-owned fields.
type schedule struct {
	order         int
	start         string
	end           string
	expectedStart string
	expectedEnd   string
}

func scheduleOf(t *domain.Task) schedule {
	return schedule{
		order:         t.OrderValue(),
		start:         formatDate(t.StartDate),
		end:           formatDate(t.EndDate),
		expectedStart: formatDate(t.ExpectedStartDate),
		expectedEnd:   formatDate(t.ExpectedEndDate),
	}
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}
