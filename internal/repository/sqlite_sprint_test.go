package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSprintRepo_ListByProjectOrdersByPosition(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, db)
	repo := NewSQLiteSprintRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestSprint(proj.ID, "later", 2)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSprint(proj.ID, "first", 0)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSprint(proj.ID, "middle", 1)))

	sprints, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, sprints, 3)
	assert.Equal(t, "first", sprints[0].Name)
	assert.Equal(t, "middle", sprints[1].Name)
	assert.Equal(t, "later", sprints[2].Name)
}

func TestSprintRepo_UpdateStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, db)
	repo := NewSQLiteSprintRepo(db)
	ctx := context.Background()

	s := testutil.NewTestSprint(proj.ID, "S1", 0)
	require.NoError(t, repo.Create(ctx, s))

	now := time.Now().UTC()
	s.Status = domain.SprintCompleted
	s.CompletedAt = &now
	require.NoError(t, repo.Update(ctx, s))

	fetched, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SprintCompleted, fetched.Status)
	assert.NotNil(t, fetched.CompletedAt)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSprintNotFound)
}

func TestWorkLogRepo_SumHours(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, db)
	task := testutil.NewTestTask(proj.ID, "alice", "logged")
	require.NoError(t, NewSQLiteTaskRepo(db).Create(context.Background(), task))
	repo := NewSQLiteWorkLogRepo(db)
	ctx := context.Background()

	empty, err := repo.SumHours(ctx, task.ID)
	require.NoError(t, err)
	assert.Zero(t, empty)

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &domain.WorkLog{ID: "w1", TaskID: task.ID, Hours: 1.5, LoggedAt: now, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &domain.WorkLog{ID: "w2", TaskID: task.ID, Hours: 2, LoggedAt: now.Add(time.Hour), Note: "pairing", CreatedAt: now}))

	total, err := repo.SumHours(ctx, task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, total, 1e-9)

	logs, err := repo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "pairing", logs[1].Note)
}
