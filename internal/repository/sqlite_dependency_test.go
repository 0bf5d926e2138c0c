package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyRepo_PredecessorsAndSuccessors(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, db)
	tasks := NewSQLiteTaskRepo(db)
	repo := NewSQLiteDependencyRepo(db)
	ctx := context.Background()

	a := testutil.NewTestTask(proj.ID, "alice", "A", testutil.WithOrder(0))
	b := testutil.NewTestTask(proj.ID, "bob", "B", testutil.WithOrder(0))
	c := testutil.NewTestTask(proj.ID, "bob", "C", testutil.WithOrder(1))
	for _, task := range []*domain.Task{a, b, c} {
		require.NoError(t, tasks.Create(ctx, task))
	}

	require.NoError(t, repo.Create(ctx, &domain.TaskDependency{TaskID: b.ID, DependsOnID: a.ID, Type: domain.FinishToStart, LagDays: 2}))
	require.NoError(t, repo.Create(ctx, &domain.TaskDependency{TaskID: c.ID, DependsOnID: a.ID, Type: domain.StartToStart}))

	succ, err := repo.ListSuccessors(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, succ, 2)

	pred, err := repo.ListPredecessors(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pred, 1)
	assert.Equal(t, a.ID, pred[0].DependsOnID)
	assert.Equal(t, 2, pred[0].LagDays)
	assert.True(t, pred[0].Drives())

	all, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, c.ID, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID, a.ID), domain.ErrInvalidInput)

	require.NoError(t, repo.DeleteByTask(ctx, a.ID))
	succ, err = repo.ListSuccessors(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, succ)
}

func TestDependencyRepo_RejectsDuplicateEdge(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, db)
	tasks := NewSQLiteTaskRepo(db)
	repo := NewSQLiteDependencyRepo(db)
	ctx := context.Background()

	a := testutil.NewTestTask(proj.ID, "alice", "A")
	b := testutil.NewTestTask(proj.ID, "alice", "B")
	require.NoError(t, tasks.Create(ctx, a))
	require.NoError(t, tasks.Create(ctx, b))

	dep := &domain.TaskDependency{TaskID: b.ID, DependsOnID: a.ID, Type: domain.FinishToStart}
	require.NoError(t, repo.Create(ctx, dep))
	assert.Error(t, repo.Create(ctx, dep))
}
