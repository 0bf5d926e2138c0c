package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDep(t *testing.T, h *harness, task, dependsOn *domain.Task, lag int) {
	t.Helper()
	require.NoError(t, h.depSvc.Add(context.Background(), &domain.TaskDependency{
		TaskID:      task.ID,
		DependsOnID: dependsOn.ID,
		LagDays:     lag,
	}))
}

func TestDependency_LagPushesDependentToThursday(t *testing.T) {
	h := newHarness(t)
	proj := h.seedProject(t, mon3, "ana", "bo")

	pred := h.addTask(t, proj.ID, "ana", "Outline")
	dep := h.addTask(t, proj.ID, "bo", "Build")
	assertSpan(t, h.reload(t, dep.ID), mon3, mon3)

	addDep(t, h, dep, pred, 2)

	// Outline ends Monday; two working days of lag, then the next working day.
	assertSpan(t, h.reload(t, pred.ID), mon3, mon3)
	assertSpan(t, h.reload(t, dep.ID), thu6, thu6)
	assertDate(t, thu6, h.projectEnd(t, proj.ID))
}

func TestDependency_LagSkipsWeekend(t *testing.T) {
	h := newHarness(t)
	proj := h.seedProject(t, thu6, "ana", "bo")

	pred := h.addTask(t, proj.ID, "ana", "Outline")
	dep := h.addTask(t, proj.ID, "bo", "Build")
	addDep(t, h, dep, pred, 1)

	// Thursday + 1 working day = Friday, next working day = Monday.
	assertSpan(t, h.reload(t, dep.ID), mon10, mon10)
}

func TestDependency_SameAssigneePredecessorLaterInOrder(t *testing.T) {
	h := newHarness(t)
	proj := h.seedProject(t, mon3, "ana")

	first := h.addTask(t, proj.ID, "ana", "First")
	second := h.addTask(t, proj.ID, "ana", "Second")
	addDep(t, h, first, second, 0)

	// First waits for Second, which now runs Monday.
	gotSecond := h.reload(t, second.ID)
	gotFirst := h.reload(t, first.ID)
	assertDate(t, tue4, gotFirst.StartDate)
	assert.True(t, gotFirst.StartDate.After(*gotSecond.EndDate))
}

func TestPropagation_ChainAcrossAssignees(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	proj := h.seedProject(t, mon3, "ana", "bo", "cy")

	root := h.addTask(t, proj.ID, "ana", "Root")
	mid := h.addTask(t, proj.ID, "bo", "Middle")
	leaf := h.addTask(t, proj.ID, "cy", "Leaf")
	addDep(t, h, mid, root, 0)
	addDep(t, h, leaf, mid, 0)

	assertSpan(t, h.reload(t, mid.ID), tue4, tue4)
	assertSpan(t, h.reload(t, leaf.ID), wed5, wed5)

	hours := 16.0
	_, err := h.taskSvc.Update(ctx, root.ID, TaskPatch{EstimatedHours: &hours})
	require.NoError(t, err)

	assertSpan(t, h.reload(t, root.ID), mon3, tue4)
	assertSpan(t, h.reload(t, mid.ID), wed5, wed5)
	assertSpan(t, h.reload(t, leaf.ID), thu6, thu6)
	assertDate(t, thu6, h.projectEnd(t, proj.ID))

	assert.NotEmpty(t, h.observer.named("propagate-dependencies"))
}

func TestPropagation_TakesLatestPredecessor(t *testing.T) {
	h := newHarness(t)
	proj := h.seedProject(t, mon3, "ana", "bo", "cy", "dee")

	root := h.addTask(t, proj.ID, "ana", "Root")
	fast := h.addTask(t, proj.ID, "bo", "Fast")
	slow := h.addTask(t, proj.ID, "cy", "Slow")
	join := h.addTask(t, proj.ID, "dee", "Join")

	addDep(t, h, fast, root, 0)
	addDep(t, h, slow, root, 2)
	addDep(t, h, join, fast, 0)
	addDep(t, h, join, slow, 0)

	assertSpan(t, h.reload(t, fast.ID), tue4, tue4)
	assertSpan(t, h.reload(t, slow.ID), thu6, thu6)
	assertSpan(t, h.reload(t, join.ID), fri7, fri7)
}

func TestPropagation_KeepsAssigneeCalendarFreeOfOverlap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	proj := h.seedProject(t, mon3, "ana", "bo")

	root := h.addTask(t, proj.ID, "ana", "Root")
	dep := h.addTask(t, proj.ID, "bo", "Dependent")
	other := h.addTask(t, proj.ID, "bo", "Other")
	addDep(t, h, dep, root, 0)

	assertSpan(t, h.reload(t, dep.ID), tue4, tue4)
	assertSpan(t, h.reload(t, other.ID), wed5, wed5)

	// Pushing Dependent onto Wednesday must also push Other, which follows
	// it on bo's calendar.
	hours := 16.0
	_, err := h.taskSvc.Update(ctx, root.ID, TaskPatch{EstimatedHours: &hours})
	require.NoError(t, err)

	assertSpan(t, h.reload(t, dep.ID), wed5, wed5)
	assertSpan(t, h.reload(t, other.ID), thu6, thu6)
}

func TestPropagation_NonFinishToStartHasNoEffect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	proj := h.seedProject(t, mon3, "ana", "bo")

	pred := h.addTask(t, proj.ID, "ana", "Pred", testutil.WithEstimate(24))
	dep := h.addTask(t, proj.ID, "bo", "Dep")
	require.NoError(t, h.depSvc.Add(ctx, &domain.TaskDependency{
		TaskID:      dep.ID,
		DependsOnID: pred.ID,
		Type:        domain.StartToStart,
	}))

	assertSpan(t, h.reload(t, dep.ID), mon3, mon3)
}

func TestPropagation_CrossProjectRefreshesBothAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	projA := h.seedProject(t, mon3, "ana")
	projB := h.seedProject(t, mon3, "bo")

	pred := h.addTask(t, projA.ID, "ana", "Upstream")
	dep := h.addTask(t, projB.ID, "bo", "Downstream")
	addDep(t, h, dep, pred, 0)
	assertDate(t, tue4, h.projectEnd(t, projB.ID))

	hours := 24.0
	_, err := h.taskSvc.Update(ctx, pred.ID, TaskPatch{EstimatedHours: &hours})
	require.NoError(t, err)

	assertDate(t, wed5, h.projectEnd(t, projA.ID))
	assertSpan(t, h.reload(t, dep.ID), thu6, thu6)
	assertDate(t, thu6, h.projectEnd(t, projB.ID))
}

func TestPropagateFrom_CycleFailsAndRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	proj := h.seedProject(t, mon3, "ana", "bo")

	a := testutil.NewTestTask(proj.ID, "ana", "A", testutil.WithOrder(0))
	a.StartDate = domain.DatePtr(mon3)
	a.EndDate = domain.DatePtr(mon3)
	require.NoError(t, h.tasks.Create(ctx, a))
	b := h.insertTask(t, proj.ID, "bo", "B", testutil.WithOrder(0))

	// The service refuses cycles, so write both edges directly.
	require.NoError(t, h.deps.Create(ctx, &domain.TaskDependency{TaskID: b.ID, DependsOnID: a.ID, Type: domain.FinishToStart}))
	require.NoError(t, h.deps.Create(ctx, &domain.TaskDependency{TaskID: a.ID, DependsOnID: b.ID, Type: domain.FinishToStart}))

	_, err := h.schedule.PropagateFrom(ctx, a.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyCycle)

	assert.Nil(t, h.reload(t, b.ID).StartDate, "no partial writes survive")
	assert.Nil(t, h.projectEnd(t, proj.ID))

	events := h.observer.named("propagate-dependencies")
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
}

func TestPropagateFrom_UnknownTask(t *testing.T) {
	h := newHarness(t)

	_, err := h.schedule.PropagateFrom(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestPropagateFrom_SkipsBacklogDependents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	proj := h.seedProject(t, mon3, "ana", "bo")

	pred := h.addTask(t, proj.ID, "ana", "Pred")
	parked := h.addTask(t, proj.ID, "bo", "Parked", testutil.InBacklog())
	require.NoError(t, h.deps.Create(ctx, &domain.TaskDependency{TaskID: parked.ID, DependsOnID: pred.ID, Type: domain.FinishToStart}))

	res, err := h.schedule.PropagateFrom(ctx, pred.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Updated)
	assert.Nil(t, h.reload(t, parked.ID).StartDate)
}
