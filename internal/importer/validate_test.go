package importer

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalPlan() *PlanSchema {
	return &PlanSchema{
		Team: TeamImport{
			Name:    "Platform",
			Members: []MemberImport{{User: "ana", DailyHours: 8}},
		},
		Project: ProjectImport{ShortID: "WEB", Name: "Website", StartDate: "2025-03-03"},
		Tasks: []TaskImport{
			{Ref: "t1", Title: "Design", Assignee: "ana", EstimatedHours: 8},
		},
	}
}

func validFullPlan() *PlanSchema {
	return &PlanSchema{
		Team: TeamImport{
			Name: "Platform",
			Members: []MemberImport{
				{User: "ana", DisplayName: "Ana", DailyHours: 8},
				{User: "bo", DailyHours: 6, WorkDays: "mon,wed,fri"},
			},
		},
		Project: ProjectImport{ShortID: "web", Name: "Website", StartDate: "2025-03-03"},
		Sprints: []SprintImport{
			{Ref: "s1", Name: "Sprint 1"},
			{Ref: "s2", Name: "Sprint 2"},
		},
		Tasks: []TaskImport{
			{Ref: "t1", Title: "Design", Assignee: "ana", SprintRef: "s1", EstimatedHours: 8, Status: "completed", ActualHours: 6},
			{Ref: "t2", Title: "Build", Assignee: "ana", SprintRef: "s2", EstimatedHours: 16},
			{Ref: "t3", Title: "Review", Assignee: "bo", SprintRef: "s2", EstimatedHours: 4},
			{Ref: "t4", Title: "Someday", Assignee: "bo", EstimatedHours: 2, Backlog: true},
		},
		Dependencies: []DependencyImport{
			{TaskRef: "t2", DependsOnRef: "t1"},
			{TaskRef: "t3", DependsOnRef: "t2", Type: "finish_to_start", LagDays: 2},
		},
	}
}

func errorsContain(errs []error, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Error(), substr) {
			return true
		}
	}
	return false
}

func TestValidatePlan_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidatePlan(validMinimalPlan()))
}

func TestValidatePlan_ValidFull(t *testing.T) {
	assert.Empty(t, ValidatePlan(validFullPlan()))
}

func TestValidatePlan_MissingRequiredFields(t *testing.T) {
	plan := &PlanSchema{}

	errs := ValidatePlan(plan)
	assert.True(t, errorsContain(errs, "team.name is required"))
	assert.True(t, errorsContain(errs, "team.members"))
	assert.True(t, errorsContain(errs, "project.name is required"))
	assert.True(t, errorsContain(errs, "project.short_id"))
}

func TestValidatePlan_ReportsEveryIssue(t *testing.T) {
	plan := validFullPlan()
	plan.Project.StartDate = "03/03/2025"
	plan.Tasks[0].Assignee = "ghost"
	plan.Tasks[1].EstimatedHours = -1
	plan.Tasks[2].Status = "blocked"

	errs := ValidatePlan(plan)
	require.Len(t, errs, 4)
	assert.True(t, errorsContain(errs, "project.start_date"))
	assert.True(t, errorsContain(errs, `tasks[0].assignee: "ghost" is not a team member`))
	assert.True(t, errorsContain(errs, "tasks[1].estimated_hours"))
	assert.True(t, errorsContain(errs, "tasks[2].status"))
}

func TestValidatePlan_HoursAboveLimit(t *testing.T) {
	plan := validFullPlan()
	plan.Tasks[1].EstimatedHours = 1e18
	plan.Tasks[0].ActualHours = domain.MaxTaskHours + 0.5

	errs := ValidatePlan(plan)
	require.Len(t, errs, 2)
	assert.True(t, errorsContain(errs, "tasks[1].estimated_hours must be a number between 0 and 10000"))
	assert.True(t, errorsContain(errs, "tasks[0].actual_hours"))
}

func TestValidatePlan_InvalidCapacity(t *testing.T) {
	tests := []struct {
		name   string
		member MemberImport
		want   error
	}{
		{"zero hours", MemberImport{User: "ana", DailyHours: 0}, domain.ErrInvalidCapacity},
		{"negative hours", MemberImport{User: "ana", DailyHours: -2}, domain.ErrInvalidCapacity},
		{"nan hours", MemberImport{User: "ana", DailyHours: math.NaN()}, domain.ErrInvalidCapacity},
		{"more than a day", MemberImport{User: "ana", DailyHours: 25}, domain.ErrInvalidCapacity},
		{"bad weekday", MemberImport{User: "ana", DailyHours: 8, WorkDays: "funday"}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validMinimalPlan()
			plan.Team.Members = []MemberImport{tt.member}

			errs := ValidatePlan(plan)
			require.Len(t, errs, 1)
			assert.True(t, errors.Is(errs[0], tt.want), "got %v", errs[0])
		})
	}
}

func TestValidatePlan_DuplicateRefs(t *testing.T) {
	plan := validFullPlan()
	plan.Team.Members = append(plan.Team.Members, MemberImport{User: "ana", DailyHours: 8})
	plan.Sprints = append(plan.Sprints, SprintImport{Ref: "s1", Name: "Again"})
	plan.Tasks = append(plan.Tasks, TaskImport{Ref: "t1", Title: "Again", Assignee: "ana", EstimatedHours: 1})

	errs := ValidatePlan(plan)
	assert.True(t, errorsContain(errs, `duplicate user "ana"`))
	assert.True(t, errorsContain(errs, `sprints[2].ref: duplicate ref "s1"`))
	assert.True(t, errorsContain(errs, `tasks[4].ref: duplicate ref "t1"`))
}

func TestValidatePlan_UnknownSprintRef(t *testing.T) {
	plan := validMinimalPlan()
	plan.Tasks[0].SprintRef = "nope"

	errs := ValidatePlan(plan)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `ref "nope" not found in sprints`)
}

func TestValidatePlan_InvalidDependencies(t *testing.T) {
	plan := validFullPlan()
	plan.Dependencies = []DependencyImport{
		{TaskRef: "t1", DependsOnRef: "missing"},
		{TaskRef: "t2", DependsOnRef: "t2"},
		{TaskRef: "t3", DependsOnRef: "t1", Type: "whenever"},
		{TaskRef: "t3", DependsOnRef: "t2", LagDays: -1},
		{TaskRef: "t3", DependsOnRef: "t2"},
	}

	errs := ValidatePlan(plan)
	assert.True(t, errorsContain(errs, `dependencies[0].depends_on_ref: ref "missing" not found in tasks`))
	assert.True(t, errorsContain(errs, "dependencies[1]: self-dependency"))
	assert.True(t, errorsContain(errs, `dependencies[2].type: invalid type "whenever"`))
	assert.True(t, errorsContain(errs, "dependencies[3].lag_days must be >= 0"))
	assert.True(t, errorsContain(errs, "dependencies[4]: duplicate dependency"))
}

func TestValidatePlan_CircularDependency(t *testing.T) {
	plan := validFullPlan()
	plan.Dependencies = append(plan.Dependencies, DependencyImport{TaskRef: "t1", DependsOnRef: "t3"})

	errs := ValidatePlan(plan)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrDependencyCycle)
}
