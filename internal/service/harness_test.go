package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
	"github.com/alexanderramin/workplan/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Saturday, so projects without a start date begin on Monday 2025-03-03.
var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Calendar dates used throughout the tests.
var (
	mon3  = testutil.Date(2025, 3, 3)
	tue4  = testutil.Date(2025, 3, 4)
	wed5  = testutil.Date(2025, 3, 5)
	thu6  = testutil.Date(2025, 3, 6)
	fri7  = testutil.Date(2025, 3, 7)
	sat8  = testutil.Date(2025, 3, 8)
	mon10 = testutil.Date(2025, 3, 10)
	tue11 = testutil.Date(2025, 3, 11)
)

type harness struct {
	db       *sql.DB
	uow      db.UnitOfWork
	tasks    *repository.SQLiteTaskRepo
	projects *repository.SQLiteProjectRepo
	teams    *repository.SQLiteTeamRepo
	sprints  *repository.SQLiteSprintRepo
	deps     *repository.SQLiteDependencyRepo
	workLogs *repository.SQLiteWorkLogRepo
	observer *recordingObserver

	schedule   ScheduleService
	taskSvc    TaskService
	ordering   OrderingService
	depSvc     DependencyService
	projectSvc ProjectService
	teamSvc    TeamService
	sprintSvc  SprintService
	importSvc  ImportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	h := &harness{
		db:       database,
		uow:      uow,
		tasks:    repository.NewSQLiteTaskRepo(database),
		projects: repository.NewSQLiteProjectRepo(database),
		teams:    repository.NewSQLiteTeamRepo(database),
		sprints:  repository.NewSQLiteSprintRepo(database),
		deps:     repository.NewSQLiteDependencyRepo(database),
		workLogs: repository.NewSQLiteWorkLogRepo(database),
		observer: &recordingObserver{},
	}
	h.schedule = NewScheduleService(NewSQLiteTransactor(uow), h.tasks,
		WithClock(func() time.Time { return fixedNow }),
		WithObserver(h.observer),
	)
	h.taskSvc = NewTaskService(h.tasks, h.workLogs, uow, h.schedule)
	h.ordering = NewOrderingService(uow, h.schedule)
	h.depSvc = NewDependencyService(h.deps, uow, h.schedule)
	h.projectSvc = NewProjectService(h.projects, h.teams, h.schedule)
	h.teamSvc = NewTeamService(h.teams, h.projects, h.schedule)
	h.sprintSvc = NewSprintService(h.sprints, h.projects)
	h.importSvc = NewImportService(uow, h.schedule)
	return h
}

// seedProject creates a team with the given members (eight hours, Monday to
// Friday) and a project owned by it starting on start.
func (h *harness) seedProject(t *testing.T, start time.Time, users ...string) *domain.Project {
	t.Helper()
	ctx := context.Background()
	team := testutil.NewTestTeam("team-" + uuid.New().String()[:8])
	require.NoError(t, h.teams.Create(ctx, team))
	for _, u := range users {
		require.NoError(t, h.teams.UpsertMember(ctx, testutil.NewTestMember(team.ID, u)))
	}
	proj := testutil.NewTestProject("Launch", testutil.WithTeam(team.ID), testutil.WithStartDate(start))
	require.NoError(t, h.projects.Create(ctx, proj))
	return proj
}

// addTask creates a task through the task service, which schedules it.
func (h *harness) addTask(t *testing.T, projectID, assignee, title string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(projectID, assignee, title, opts...)
	require.NoError(t, h.taskSvc.Create(context.Background(), task))
	return task
}

// insertTask writes a task straight to the repository without scheduling it.
func (h *harness) insertTask(t *testing.T, projectID, assignee, title string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(projectID, assignee, title, opts...)
	require.NoError(t, h.tasks.Create(context.Background(), task))
	return task
}

func (h *harness) reload(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := h.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (h *harness) projectEnd(t *testing.T, projectID string) *time.Time {
	t.Helper()
	p, err := h.projects.GetByID(context.Background(), projectID)
	require.NoError(t, err)
	return p.ActualExpectedEndDate
}

func assertDate(t *testing.T, want time.Time, got *time.Time, msgAndArgs ...any) {
	t.Helper()
	if !assert.NotNil(t, got, msgAndArgs...) {
		return
	}
	assert.Equal(t, want.Format("2006-01-02"), got.Format("2006-01-02"), msgAndArgs...)
}

func assertSpan(t *testing.T, task *domain.Task, start, end time.Time) {
	t.Helper()
	assertDate(t, start, task.StartDate, "%s start", task.Title)
	assertDate(t, end, task.EndDate, "%s end", task.Title)
}

func assertOrder(t *testing.T, want int, task *domain.Task) {
	t.Helper()
	if assert.NotNil(t, task.Order, "%s order", task.Title) {
		assert.Equal(t, want, *task.Order, "%s order", task.Title)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) named(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
