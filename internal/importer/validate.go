package importer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

const dateLayout = "2006-01-02"

// ValidatePlan checks the plan before conversion and returns every problem
// found, not just the first.
func ValidatePlan(plan *PlanSchema) []error {
	var errs []error

	users := make(map[string]bool)
	errs = append(errs, validateTeam(&plan.Team, users)...)
	errs = append(errs, validateProject(&plan.Project)...)

	sprintRefs := make(map[string]bool)
	errs = append(errs, validateSprints(plan.Sprints, sprintRefs)...)

	taskRefs := make(map[string]bool)
	errs = append(errs, validateTasks(plan.Tasks, users, sprintRefs, taskRefs)...)

	errs = append(errs, validateDependencies(plan.Dependencies, taskRefs)...)

	return errs
}

func validateTeam(t *TeamImport, users map[string]bool) []error {
	var errs []error

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, fmt.Errorf("team.name is required"))
	}
	if len(t.Members) == 0 {
		errs = append(errs, fmt.Errorf("team.members: at least one member is required"))
	}

	for i, m := range t.Members {
		prefix := fmt.Sprintf("team.members[%d]", i)

		if m.User == "" {
			errs = append(errs, fmt.Errorf("%s.user is required", prefix))
		} else if users[m.User] {
			errs = append(errs, fmt.Errorf("%s.user: duplicate user %q", prefix, m.User))
		} else {
			users[m.User] = true
		}

		if _, err := memberCapacity(m); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	candidate := domain.Project{ShortID: strings.ToUpper(p.ShortID)}
	if err := candidate.ValidateShortID(); err != nil {
		errs = append(errs, fmt.Errorf("project.short_id: %w", err))
	}
	if p.StartDate != "" {
		if _, err := time.Parse(dateLayout, p.StartDate); err != nil {
			errs = append(errs, fmt.Errorf("project.start_date: invalid date format %q (expected YYYY-MM-DD)", p.StartDate))
		}
	}

	return errs
}

func validateSprints(sprints []SprintImport, refs map[string]bool) []error {
	var errs []error

	for i, s := range sprints {
		prefix := fmt.Sprintf("sprints[%d]", i)

		if s.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[s.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, s.Ref))
		} else {
			refs[s.Ref] = true
		}

		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport, users, sprintRefs, refs map[string]bool) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)

		if t.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[t.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, t.Ref))
		} else {
			refs[t.Ref] = true
		}

		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}

		if t.Assignee == "" {
			errs = append(errs, fmt.Errorf("%s.assignee is required", prefix))
		} else if !users[t.Assignee] {
			errs = append(errs, fmt.Errorf("%s.assignee: %q is not a team member", prefix, t.Assignee))
		}

		if t.SprintRef != "" && !sprintRefs[t.SprintRef] {
			errs = append(errs, fmt.Errorf("%s.sprint_ref: ref %q not found in sprints", prefix, t.SprintRef))
		}

		if !validHours(t.EstimatedHours) {
			errs = append(errs, fmt.Errorf("%s.estimated_hours must be a number between 0 and %d, got %v", prefix, domain.MaxTaskHours, t.EstimatedHours))
		}
		if !validHours(t.ActualHours) {
			errs = append(errs, fmt.Errorf("%s.actual_hours must be a number between 0 and %d, got %v", prefix, domain.MaxTaskHours, t.ActualHours))
		}

		if t.Status != "" {
			if _, err := domain.ParseTaskStatus(t.Status); err != nil {
				errs = append(errs, fmt.Errorf("%s.status: %w", prefix, err))
			}
		}
	}

	return errs
}

func validateDependencies(deps []DependencyImport, taskRefs map[string]bool) []error {
	var errs []error
	seen := make(map[[2]string]bool)

	for i, d := range deps {
		prefix := fmt.Sprintf("dependencies[%d]", i)

		if d.TaskRef == "" {
			errs = append(errs, fmt.Errorf("%s.task_ref is required", prefix))
		} else if !taskRefs[d.TaskRef] {
			errs = append(errs, fmt.Errorf("%s.task_ref: ref %q not found in tasks", prefix, d.TaskRef))
		}

		if d.DependsOnRef == "" {
			errs = append(errs, fmt.Errorf("%s.depends_on_ref is required", prefix))
		} else if !taskRefs[d.DependsOnRef] {
			errs = append(errs, fmt.Errorf("%s.depends_on_ref: ref %q not found in tasks", prefix, d.DependsOnRef))
		}

		if d.TaskRef != "" && d.TaskRef == d.DependsOnRef {
			errs = append(errs, fmt.Errorf("%s: self-dependency (task_ref == depends_on_ref == %q)", prefix, d.TaskRef))
		}

		key := [2]string{d.TaskRef, d.DependsOnRef}
		if d.TaskRef != "" && d.DependsOnRef != "" {
			if seen[key] {
				errs = append(errs, fmt.Errorf("%s: duplicate dependency %q -> %q", prefix, d.TaskRef, d.DependsOnRef))
			}
			seen[key] = true
		}

		if d.Type != "" && !domain.ValidDependencyTypes[domain.DependencyType(d.Type)] {
			errs = append(errs, fmt.Errorf("%s.type: invalid type %q", prefix, d.Type))
		}
		if d.LagDays < 0 {
			errs = append(errs, fmt.Errorf("%s.lag_days must be >= 0, got %d", prefix, d.LagDays))
		}
	}

	if len(deps) > 1 {
		errs = append(errs, detectCycles(deps)...)
	}

	return errs
}

func detectCycles(deps []DependencyImport) []error {
	// Edges point from prerequisite to dependent; order of first appearance
	// keeps the reported error stable.
	graph := make(map[string][]string)
	var nodes []string
	known := make(map[string]bool)
	for _, d := range deps {
		if d.TaskRef == "" || d.DependsOnRef == "" || d.TaskRef == d.DependsOnRef {
			continue
		}
		graph[d.DependsOnRef] = append(graph[d.DependsOnRef], d.TaskRef)
		for _, n := range []string{d.DependsOnRef, d.TaskRef} {
			if !known[n] {
				known[n] = true
				nodes = append(nodes, n)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, neighbor := range graph[node] {
			if color[neighbor] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q: %w", node, neighbor, domain.ErrDependencyCycle))
				return true
			}
			if color[neighbor] == white && visit(neighbor) {
				return true
			}
		}
		color[node] = black
		return false
	}

	for _, node := range nodes {
		if color[node] == white && visit(node) {
			break
		}
	}

	return errs
}

func validHours(h float64) bool {
	return h >= 0 && h <= domain.MaxTaskHours && !math.IsNaN(h)
}

func memberCapacity(m MemberImport) (domain.WorkCapacity, error) {
	days := domain.NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	if strings.TrimSpace(m.WorkDays) != "" {
		parsed, err := domain.ParseWeekdaySet(m.WorkDays)
		if err != nil {
			return domain.WorkCapacity{}, fmt.Errorf("work_days: %w", err)
		}
		days = parsed
	}
	c := domain.WorkCapacity{DailyWorkHours: m.DailyHours, WorkDays: days}
	if err := c.Validate(); err != nil {
		return domain.WorkCapacity{}, err
	}
	return c, nil
}
