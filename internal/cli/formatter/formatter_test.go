package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func usePlain(t *testing.T) {
	t.Helper()
	SetPlain(true)
	t.Cleanup(func() { SetPlain(false) })
}

func day(d int) *time.Time {
	v := time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func scheduledTask(title, assignee string, order int, start, end, expectedEnd int) *domain.Task {
	t := &domain.Task{
		ID:              "0123456789abcdef-" + title,
		Title:           title,
		AssigneeID:      assignee,
		Status:          domain.TaskTodo,
		EstimatedHours:  8,
		StartDate:       day(start),
		EndDate:         day(end),
		ExpectedEndDate: day(expectedEnd),
	}
	t.SetOrder(order)
	return t
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	usePlain(t)
	out := RenderTable([]string{"A", "LONG HEADER"}, [][]string{
		{"wide cell", "x"},
		{"y"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A          LONG HEADER", lines[0])
	assert.Equal(t, "---------  -----------", lines[1])
	assert.Equal(t, "wide cell  x", lines[2])
	assert.Equal(t, "y          ", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderTable_StyledCellsKeepAlignment(t *testing.T) {
	out := stripANSI(RenderTable([]string{"S", "N"}, [][]string{
		{TaskStatusPill(domain.TaskInProgress), "1"},
		{TaskStatusPill(domain.TaskTodo), "2"},
	}))
	lines := strings.Split(out, "\n")
	assert.Equal(t, strings.Index(lines[2], "1"), strings.Index(lines[3], "2"))
}

func TestSetPlain_DropsEscapes(t *testing.T) {
	usePlain(t)
	assert.Equal(t, "✔ completed", TaskStatusPill(domain.TaskCompleted))
	assert.Equal(t, "TITLE\n\nbody", RenderBox("title", "body"))
	assert.True(t, IsPlain())
}

func TestFormatHelpers(t *testing.T) {
	usePlain(t)
	assert.Equal(t, "7.5h", FormatHours(7.5))
	assert.Equal(t, "8h", FormatHours(8))
	assert.Equal(t, "--", FormatDate(nil))
	assert.Equal(t, "2025-03-03", FormatDate(day(3)))
	assert.Equal(t, "Mon 2025-03-03", FormatSpan(day(3), day(3)))
	assert.Equal(t, "Mon 2025-03-03 → Tue 2025-03-04", FormatSpan(day(3), day(4)))
	assert.Equal(t, "unscheduled", FormatSpan(nil, day(4)))
	assert.Equal(t, "01234567", TruncID("0123456789"))
	assert.Equal(t, "6h × mon,wed,fri", FormatCapacity(domain.WorkCapacity{
		DailyWorkHours: 6,
		WorkDays:       domain.NewWeekdaySet(time.Monday, time.Wednesday, time.Friday),
	}))
}

func TestDrift(t *testing.T) {
	usePlain(t)
	assert.Equal(t, "+2d", Drift(scheduledTask("late", "ana", 0, 3, 7, 5)))
	assert.Equal(t, "-1d", Drift(scheduledTask("early", "ana", 0, 3, 4, 5)))
	assert.Equal(t, "on plan", Drift(scheduledTask("exact", "ana", 0, 3, 5, 5)))
	assert.Empty(t, Drift(&domain.Task{}))
}

func TestFormatSchedule_GroupsByAssignee(t *testing.T) {
	usePlain(t)
	p := &domain.Project{ShortID: "WEB01", Name: "Web", ActualExpectedEndDate: day(5)}
	parked := &domain.Task{Title: "Parked", AssigneeID: "cy", IsBacklog: true}
	out := FormatSchedule(p, []*domain.Task{
		scheduledTask("Design", "ana", 0, 3, 3, 3),
		scheduledTask("Build", "ana", 1, 4, 5, 4),
		scheduledTask("Review", "bo", 0, 4, 4, 4),
		parked,
	})

	assert.Contains(t, out, "WEB01 ends 2025-03-05")
	assert.Contains(t, out, "ANA")
	assert.Contains(t, out, "BO")
	assert.NotContains(t, out, "Parked")
	assert.Less(t, strings.Index(out, "Design"), strings.Index(out, "Build"))
	assert.Contains(t, out, "+1d")

	empty := FormatSchedule(p, nil)
	assert.Contains(t, empty, "Nothing scheduled.")
}

func TestFormatTaskList_ShowsBacklogAndSprint(t *testing.T) {
	usePlain(t)
	sprintID := "sprint-1"
	inSprint := scheduledTask("Design", "ana", 0, 3, 3, 3)
	inSprint.SprintID = &sprintID
	parked := &domain.Task{ID: "parked-task-id", Title: "Parked", AssigneeID: "ana", IsBacklog: true, Status: domain.TaskTodo}

	out := FormatTaskList([]*domain.Task{inSprint, parked}, map[string]string{sprintID: "Sprint 1"})
	assert.Contains(t, out, "Sprint 1")
	assert.Contains(t, out, "backlog")
	assert.Contains(t, out, "parked-t")
}

func TestFormatTaskDetail(t *testing.T) {
	usePlain(t)
	task := scheduledTask("Design", "ana", 2, 3, 4, 3)
	task.Description = "Wireframes"
	logs := []*domain.WorkLog{{Hours: 3, Note: "kickoff", LoggedAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)}}

	out := FormatTaskDetail(task, logs)
	assert.Contains(t, out, "Wireframes")
	assert.Contains(t, out, "Order:      2")
	assert.Contains(t, out, "Mon 2025-03-03 → Tue 2025-03-04")
	assert.Contains(t, out, "2025-03-03 10:00")
	assert.Contains(t, out, "kickoff")
}

func TestFormatProjectDetail_CountsTasks(t *testing.T) {
	usePlain(t)
	p := &domain.Project{ShortID: "WEB01", Name: "Web", StartDate: day(3)}
	out := FormatProjectDetail(ProjectDetail{
		Project: p,
		Team:    &domain.Team{Name: "Platform"},
		Members: []*domain.TeamMember{{UserID: "ana", DisplayName: "Ana", Capacity: domain.WorkCapacity{DailyWorkHours: 8, WorkDays: domain.WeekdaysMonFri}}},
		Sprints: []*domain.Sprint{{Name: "Sprint 1", Status: domain.SprintPlanned}},
		Tasks: []*domain.Task{
			scheduledTask("A", "ana", 0, 3, 3, 3),
			{Title: "B", IsBacklog: true, EstimatedHours: 4},
		},
	})
	assert.Contains(t, out, "Platform")
	assert.Contains(t, out, "1 scheduled, 1 in backlog")
	assert.Contains(t, out, "8h estimated, 0h logged")
	assert.Contains(t, out, "8h × mon,tue,wed,thu,fri")
	assert.Contains(t, out, "Sprint 1")
}

func TestFormatDependencyList(t *testing.T) {
	usePlain(t)
	out := FormatDependencyList([]domain.TaskDependency{
		{TaskID: "task-build-001", DependsOnID: "task-design-01", Type: domain.FinishToStart, LagDays: 2},
		{TaskID: "task-build-001", DependsOnID: "task-review-1", Type: domain.StartToStart},
	}, map[string]string{"task-build-001": "Build", "task-design-01": "Design"})

	assert.Contains(t, out, "Build task-bui")
	assert.Contains(t, out, "2d")
	assert.Contains(t, out, "drives schedule")
	assert.Contains(t, out, "informational")
}

func TestFormatImportAndRecalc(t *testing.T) {
	usePlain(t)
	out := FormatImportResult(&service.ImportResult{
		Team:        &domain.Team{Name: "Crew"},
		Project:     &domain.Project{ShortID: "LCH01", Name: "Launch", ActualExpectedEndDate: day(6)},
		MemberCount: 2, SprintCount: 1, TaskCount: 4, DependencyCount: 1,
	})
	assert.Contains(t, out, "LCH01")
	assert.Contains(t, out, "2 members, 1 sprints, 4 tasks, 1 dependencies")
	assert.Contains(t, out, "2025-03-06")

	recalc := FormatRecalc(&service.ProjectSchedule{
		Assignees:  []*service.AssigneeSchedule{{Changed: []*domain.Task{{}, {}}}, {}},
		ProjectEnd: day(7),
	})
	assert.Equal(t, "Recalculated 2 assignees, 2 tasks moved. Expected end: 2025-03-07", recalc)
}
