package scheduler

import (
	"sort"

	"github.com/alexanderramin/workplan/internal/domain"
)

// SprintPositions maps sprint ID to sprint position within a project.
type SprintPositions map[string]int

type groupKey struct {
	unsprinted bool
	position   int
	sprintID   string
}

func (p SprintPositions) keyFor(t *domain.Task) groupKey {
	if t.SprintID == nil {
		return groupKey{unsprinted: true}
	}
	pos, ok := p[*t.SprintID]
	if !ok {
		return groupKey{unsprinted: true}
	}
	return groupKey{position: pos, sprintID: *t.SprintID}
}

func (a groupKey) less(b groupKey) bool {
	if a.unsprinted != b.unsprinted {
		return !a.unsprinted
	}
	if a.position != b.position {
		return a.position < b.position
	}
	return a.sprintID < b.sprintID
}

// OrderForRecalculation returns tasks regrouped by sprint in sprint position
// order, tasks without a (known) sprint last. Input order is preserved inside
// each group, so callers pass tasks already sorted by Order.
func OrderForRecalculation(tasks []*domain.Task, positions SprintPositions) []*domain.Task {
	out := make([]*domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return positions.keyFor(out[i]).less(positions.keyFor(out[j]))
	})
	return out
}

// SortByOrder sorts tasks by (order, created_at, id). Tasks without an order sort last.
func SortByOrder(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if (a.Order == nil) != (b.Order == nil) {
			return a.Order != nil
		}
		if a.OrderValue() != b.OrderValue() {
			return a.OrderValue() < b.OrderValue()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// renumber assigns 0..n-1 in slice order and returns the tasks whose order changed.
func renumber(tasks []*domain.Task) []*domain.Task {
	var changed []*domain.Task
	for i, t := range tasks {
		if t.Order != nil && *t.Order == i {
			continue
		}
		t.SetOrder(i)
		changed = append(changed, t)
	}
	return changed
}

// Compact renumbers one assignee's active tasks to a dense 0..n-1 run,
// healing duplicates and gaps. The slice is sorted in place.
func Compact(tasks []*domain.Task) []*domain.Task {
	SortByOrder(tasks)
	return renumber(tasks)
}

// NextOrder returns the order a task appended after tasks receives.
func NextOrder(tasks []*domain.Task) int {
	next := 0
	for _, t := range tasks {
		if t.Order != nil && *t.Order >= next {
			next = *t.Order + 1
		}
	}
	return next
}

// CompletedFirst moves completed tasks ahead of the others while keeping the
// relative order inside both groups, then renumbers densely.
func CompletedFirst(tasks []*domain.Task) []*domain.Task {
	SortByOrder(tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Status.IsTerminal() && !tasks[j].Status.IsTerminal()
	})
	return renumber(tasks)
}

// SprintInsertionPoint returns the order a task moved into sprintID takes:
// right after the last task already in that sprint, otherwise before the
// first task of a later sprint, otherwise at the end. tasks must not contain
// the moved task.
func SprintInsertionPoint(tasks []*domain.Task, sprintID string, positions SprintPositions) int {
	lastInSprint := -1
	for _, t := range tasks {
		if t.InSprint(sprintID) && t.OrderValue() > lastInSprint {
			lastInSprint = t.OrderValue()
		}
	}
	if lastInSprint >= 0 {
		return lastInSprint + 1
	}

	target, ok := positions[sprintID]
	if ok {
		firstLater := -1
		for _, t := range tasks {
			if t.SprintID == nil {
				continue
			}
			pos, known := positions[*t.SprintID]
			if !known || pos <= target {
				continue
			}
			if firstLater < 0 || t.OrderValue() < firstLater {
				firstLater = t.OrderValue()
			}
		}
		if firstLater >= 0 {
			return firstLater
		}
	}
	return NextOrder(tasks)
}

// MoveIntoSprint places moved at the sprint insertion point, pushing every
// later-ordered task up by one, then compacts the run. tasks holds the
// assignee's other active tasks. It returns every task whose order changed,
// moved included.
func MoveIntoSprint(tasks []*domain.Task, moved *domain.Task, sprintID string, positions SprintPositions) []*domain.Task {
	all := append(append([]*domain.Task{}, tasks...), moved)
	before := snapshotOrders(all)

	point := SprintInsertionPoint(tasks, sprintID, positions)
	for _, t := range tasks {
		if t.Order != nil && *t.Order >= point {
			t.SetOrder(*t.Order + 1)
		}
	}
	sid := sprintID
	moved.SprintID = &sid
	moved.SetOrder(point)

	Compact(all)
	changed := changedSince(all, before)
	for _, t := range changed {
		if t == moved {
			return changed
		}
	}
	return append(changed, moved)
}

// ApplyReorder assigns the explicit orders in moves and renumbers the whole
// run densely. When an explicit order collides with an untouched task the
// moved task goes first. It returns every task whose order changed.
func ApplyReorder(tasks []*domain.Task, moves map[string]int) []*domain.Task {
	before := snapshotOrders(tasks)
	for _, t := range tasks {
		if o, ok := moves[t.ID]; ok {
			t.SetOrder(o)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.OrderValue() != b.OrderValue() {
			return a.OrderValue() < b.OrderValue()
		}
		_, aMoved := moves[a.ID]
		_, bMoved := moves[b.ID]
		if aMoved != bMoved {
			return aMoved
		}
		if before[a.ID] != before[b.ID] {
			return before[a.ID] < before[b.ID]
		}
		return a.ID < b.ID
	})
	renumber(tasks)
	return changedSince(tasks, before)
}

func snapshotOrders(tasks []*domain.Task) map[string]int {
	m := make(map[string]int, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t.OrderValue()
	}
	return m
}

func changedSince(tasks []*domain.Task, before map[string]int) []*domain.Task {
	var changed []*domain.Task
	for _, t := range tasks {
		if before[t.ID] != t.OrderValue() {
			changed = append(changed, t)
		}
	}
	return changed
}
