package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var convertNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestConvert_MinimalPlan(t *testing.T) {
	plan, err := Convert(validMinimalPlan(), convertNow)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.Team.ID)
	assert.Equal(t, "Platform", plan.Team.Name)

	require.Len(t, plan.Members, 1)
	m := plan.Members[0]
	assert.Equal(t, plan.Team.ID, m.TeamID)
	assert.Equal(t, "ana", m.UserID)
	assert.Equal(t, 8.0, m.Capacity.DailyWorkHours)
	assert.Equal(t, "mon,tue,wed,thu,fri", m.Capacity.WorkDays.String())

	assert.NotEmpty(t, plan.Project.ID)
	require.NotNil(t, plan.Project.TeamID)
	assert.Equal(t, plan.Team.ID, *plan.Project.TeamID)
	require.NotNil(t, plan.Project.StartDate)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), *plan.Project.StartDate)
	assert.Nil(t, plan.Project.ActualExpectedEndDate)

	require.Len(t, plan.Tasks, 1)
	task := plan.Tasks[0]
	assert.Equal(t, plan.Project.ID, task.ProjectID)
	assert.Equal(t, domain.TaskTodo, task.Status)
	require.NotNil(t, task.Order)
	assert.Equal(t, 0, *task.Order)
	assert.Nil(t, task.SprintID)
	assert.Nil(t, task.StartDate)

	assert.Empty(t, plan.Sprints)
	assert.Empty(t, plan.Dependencies)
}

func TestConvert_FullPlan(t *testing.T) {
	plan, err := Convert(validFullPlan(), convertNow)
	require.NoError(t, err)

	assert.Equal(t, "WEB", plan.Project.ShortID)

	require.Len(t, plan.Members, 2)
	assert.Equal(t, "mon,wed,fri", plan.Members[1].Capacity.WorkDays.String())
	assert.Equal(t, 6.0, plan.Members[1].Capacity.DailyWorkHours)

	require.Len(t, plan.Sprints, 2)
	assert.Equal(t, 0, plan.Sprints[0].Position)
	assert.Equal(t, 1, plan.Sprints[1].Position)
	assert.Equal(t, domain.SprintPlanned, plan.Sprints[0].Status)

	require.Len(t, plan.Tasks, 4)
	design, build, review, someday := plan.Tasks[0], plan.Tasks[1], plan.Tasks[2], plan.Tasks[3]

	// Orders are dense per assignee in file order.
	assert.Equal(t, 0, *design.Order)
	assert.Equal(t, 1, *build.Order)
	assert.Equal(t, 0, *review.Order)
	assert.Nil(t, someday.Order)
	assert.True(t, someday.IsBacklog)

	assert.Equal(t, domain.TaskCompleted, design.Status)
	assert.Equal(t, 6.0, design.ActualHours)
	require.NotNil(t, design.SprintID)
	assert.Equal(t, plan.Sprints[0].ID, *design.SprintID)
	assert.Equal(t, plan.Sprints[1].ID, *review.SprintID)
	assert.True(t, design.CreatedAt.Before(build.CreatedAt))

	require.Len(t, plan.Dependencies, 2)
	assert.Equal(t, build.ID, plan.Dependencies[0].TaskID)
	assert.Equal(t, design.ID, plan.Dependencies[0].DependsOnID)
	assert.Equal(t, domain.FinishToStart, plan.Dependencies[0].Type)
	assert.Equal(t, 2, plan.Dependencies[1].LagDays)
}

func TestConvert_NoStartDate(t *testing.T) {
	schema := validMinimalPlan()
	schema.Project.StartDate = ""

	plan, err := Convert(schema, convertNow)
	require.NoError(t, err)
	assert.Nil(t, plan.Project.StartDate)
}

func TestConvert_IDsAreUnique(t *testing.T) {
	plan, err := Convert(validFullPlan(), convertNow)
	require.NoError(t, err)

	seen := map[string]bool{plan.Team.ID: true, plan.Project.ID: true}
	for _, s := range plan.Sprints {
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
	for _, task := range plan.Tasks {
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

const yamlPlan = `
team:
  name: Platform
  members:
    - user: ana
      daily_hours: 8
    - user: bo
      daily_hours: 4
      work_days: "1,3,5"
project:
  short_id: WEB
  name: Website
  start_date: "2025-03-03"
sprints:
  - ref: s1
    name: Sprint 1
tasks:
  - ref: t1
    title: Design
    assignee: ana
    sprint_ref: s1
    estimated_hours: 12
  - ref: t2
    title: Review
    assignee: bo
    estimated_hours: 2
    backlog: true
dependencies:
  - task_ref: t2
    depends_on_ref: t1
    lag_days: 1
`

const jsonPlan = `{
  "team": {"name": "Platform", "members": [{"user": "ana", "daily_hours": 8}]},
  "project": {"short_id": "WEB", "name": "Website"},
  "tasks": [{"ref": "t1", "title": "Design", "assignee": "ana", "estimated_hours": 3.5, "status": "in_progress"}]
}`

func writePlanFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	for _, name := range []string{"plan.yaml", "plan.YML"} {
		t.Run(name, func(t *testing.T) {
			schema, err := LoadFile(writePlanFile(t, name, yamlPlan))
			require.NoError(t, err)

			assert.Equal(t, "Platform", schema.Team.Name)
			require.Len(t, schema.Team.Members, 2)
			assert.Equal(t, "1,3,5", schema.Team.Members[1].WorkDays)
			assert.Equal(t, "2025-03-03", schema.Project.StartDate)
			require.Len(t, schema.Tasks, 2)
			assert.Equal(t, 12.0, schema.Tasks[0].EstimatedHours)
			assert.True(t, schema.Tasks[1].Backlog)
			require.Len(t, schema.Dependencies, 1)
			assert.Equal(t, 1, schema.Dependencies[0].LagDays)
			assert.Empty(t, ValidatePlan(schema))
		})
	}
}

func TestLoadFile_JSON(t *testing.T) {
	schema, err := LoadFile(writePlanFile(t, "plan.json", jsonPlan))
	require.NoError(t, err)

	require.Len(t, schema.Tasks, 1)
	assert.Equal(t, 3.5, schema.Tasks[0].EstimatedHours)
	assert.Equal(t, "in_progress", schema.Tasks[0].Status)
	assert.Empty(t, ValidatePlan(schema))
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = LoadFile(writePlanFile(t, "bad.json", "{not json"))
	assert.ErrorContains(t, err, "parsing plan file")

	_, err = LoadFile(writePlanFile(t, "bad.yaml", "team: [unclosed"))
	assert.ErrorContains(t, err, "parsing plan file")
}
