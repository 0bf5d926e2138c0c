package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/importer"
	"github.com/alexanderramin/workplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launchPlan() *importer.PlanSchema {
	return &importer.PlanSchema{
		Team: importer.TeamImport{
			Name: "Launch crew",
			Members: []importer.MemberImport{
				{User: "ana", DailyHours: 8},
				{User: "bo", DailyHours: 4, WorkDays: "mon,tue,wed,thu,fri"},
			},
		},
		Project: importer.ProjectImport{ShortID: "lch01", Name: "Launch", StartDate: "2025-03-03"},
		Sprints: []importer.SprintImport{{Ref: "s1", Name: "Sprint 1"}},
		Tasks: []importer.TaskImport{
			{Ref: "design", Title: "Design", Assignee: "ana", SprintRef: "s1", EstimatedHours: 8},
			{Ref: "build", Title: "Build", Assignee: "bo", SprintRef: "s1", EstimatedHours: 8},
			{Ref: "docs", Title: "Docs", Assignee: "ana", EstimatedHours: 8},
			{Ref: "later", Title: "Later", Assignee: "ana", EstimatedHours: 8, Backlog: true},
		},
		Dependencies: []importer.DependencyImport{
			{TaskRef: "build", DependsOnRef: "design", LagDays: 1},
		},
	}
}

func tasksByTitle(t *testing.T, h *harness, projectID string) map[string]*domain.Task {
	t.Helper()
	list, err := h.tasks.ListByProject(context.Background(), projectID, true)
	require.NoError(t, err)
	out := make(map[string]*domain.Task, len(list))
	for _, task := range list {
		out[task.Title] = task
	}
	return out
}

func TestImportPlan_WritesAndSchedules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.importSvc.ImportPlan(ctx, launchPlan())
	require.NoError(t, err)
	assert.Equal(t, 2, res.MemberCount)
	assert.Equal(t, 1, res.SprintCount)
	assert.Equal(t, 4, res.TaskCount)
	assert.Equal(t, 1, res.DependencyCount)
	assert.Equal(t, "LCH01", res.Project.ShortID)
	require.NotNil(t, res.Project.TeamID)
	assert.Equal(t, res.Team.ID, *res.Project.TeamID)

	byTitle := tasksByTitle(t, h, res.Project.ID)
	require.Len(t, byTitle, 4)
	assertSpan(t, byTitle["Design"], mon3, mon3)
	assertSpan(t, byTitle["Docs"], tue4, tue4)
	// Design ends Monday, one day of lag, then bo works four hours a day.
	assertSpan(t, byTitle["Build"], wed5, thu6)
	assert.Nil(t, byTitle["Later"].StartDate)
	assert.Nil(t, byTitle["Later"].Order)

	assertDate(t, thu6, res.Project.ActualExpectedEndDate)
	assertDate(t, thu6, h.projectEnd(t, res.Project.ID))
}

func TestImportPlan_InvalidPlanWritesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	plan := launchPlan()
	plan.Tasks[1].Assignee = "stranger"
	plan.Dependencies = append(plan.Dependencies, importer.DependencyImport{TaskRef: "design", DependsOnRef: "build"})

	_, err := h.importSvc.ImportPlan(ctx, plan)
	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.GreaterOrEqual(t, len(verr.Issues), 2)

	teams, err := h.teams.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestImportPlan_RejectsDependenciesAgainstQueueOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	plan := &importer.PlanSchema{
		Team: importer.TeamImport{
			Name:    "Zigzag",
			Members: []importer.MemberImport{{User: "ana", DailyHours: 8}, {User: "bo", DailyHours: 8}},
		},
		Project: importer.ProjectImport{ShortID: "zz", Name: "Zigzag", StartDate: "2025-03-03"},
		Tasks: []importer.TaskImport{
			{Ref: "a0", Title: "A0", Assignee: "ana", EstimatedHours: 8},
			{Ref: "a1", Title: "A1", Assignee: "ana", EstimatedHours: 8},
			{Ref: "b0", Title: "B0", Assignee: "bo", EstimatedHours: 8},
			{Ref: "b1", Title: "B1", Assignee: "bo", EstimatedHours: 8},
		},
		Dependencies: []importer.DependencyImport{
			{TaskRef: "a0", DependsOnRef: "b1"},
			{TaskRef: "b0", DependsOnRef: "a1"},
		},
	}

	_, err := h.importSvc.ImportPlan(ctx, plan)
	assert.ErrorIs(t, err, domain.ErrDependencyCycle)

	projects, err := h.projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestImportPlan_RejectsExistingTeamOrProject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.importSvc.ImportPlan(ctx, launchPlan())
	require.NoError(t, err)

	_, err = h.importSvc.ImportPlan(ctx, launchPlan())
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Len(t, verr.Issues, 2)

	projects, err := h.projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestImportPlan_RollsBackOnWriteFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	boom := errors.New("disk full")

	svc := NewImportService(&testutil.FailOnNthExecUoW{DB: h.db, FailOn: 3, Err: boom}, h.schedule)
	_, err := svc.ImportPlan(ctx, launchPlan())
	assert.ErrorIs(t, err, boom)

	teams, err := h.teams.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
	projects, err := h.projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestImportFile_YAML(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := `team:
  name: Docs team
  members:
    - user: ana
      daily_hours: 8
project:
  short_id: DOC01
  name: Docs
  start_date: "2025-03-03"
tasks:
  - ref: a
    title: Outline
    assignee: ana
    estimated_hours: 12
  - ref: b
    title: Draft
    assignee: ana
    estimated_hours: 4
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	res, err := h.importSvc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TaskCount)

	byTitle := tasksByTitle(t, h, res.Project.ID)
	assertSpan(t, byTitle["Outline"], mon3, tue4)
	assertSpan(t, byTitle["Draft"], tue4, tue4)
	assertDate(t, tue4, res.Project.ActualExpectedEndDate)

	_, err = h.importSvc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "loading plan")
}
