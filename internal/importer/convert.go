package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/google/uuid"
)

// Plan holds the domain objects produced from a PlanSchema, ready to persist.
type Plan struct {
	Team         *domain.Team
	Members      []*domain.TeamMember
	Project      *domain.Project
	Sprints      []*domain.Sprint
	Tasks        []*domain.Task
	Dependencies []*domain.TaskDependency
}

// Convert transforms a validated PlanSchema into domain objects with fresh ids.
// Call ValidatePlan first; Convert assumes the plan is valid.
func Convert(schema *PlanSchema, now time.Time) (*Plan, error) {
	now = now.UTC()

	team := &domain.Team{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(schema.Team.Name),
		CreatedAt: now,
	}

	members := make([]*domain.TeamMember, 0, len(schema.Team.Members))
	for _, m := range schema.Team.Members {
		capacity, err := memberCapacity(m)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.User, err)
		}
		members = append(members, &domain.TeamMember{
			TeamID:      team.ID,
			UserID:      m.User,
			DisplayName: m.DisplayName,
			Capacity:    capacity,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	project := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   strings.ToUpper(schema.Project.ShortID),
		Name:      schema.Project.Name,
		TeamID:    &team.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if schema.Project.StartDate != "" {
		start, err := time.Parse(dateLayout, schema.Project.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date: %w", err)
		}
		project.StartDate = domain.DatePtr(start)
	}

	sprintIDs := make(map[string]string) // ref -> UUID
	sprints := make([]*domain.Sprint, 0, len(schema.Sprints))
	for i, s := range schema.Sprints {
		id := uuid.New().String()
		sprintIDs[s.Ref] = id
		sprints = append(sprints, &domain.Sprint{
			ID:        id,
			ProjectID: project.ID,
			Name:      s.Name,
			Position:  i,
			Status:    domain.SprintPlanned,
			CreatedAt: now,
		})
	}

	taskIDs := make(map[string]string) // ref -> UUID
	nextOrder := make(map[string]int)  // assignee -> next order
	tasks := make([]*domain.Task, 0, len(schema.Tasks))
	for i, t := range schema.Tasks {
		status := domain.TaskTodo
		if t.Status != "" {
			parsed, err := domain.ParseTaskStatus(t.Status)
			if err != nil {
				return nil, fmt.Errorf("task %q: %w", t.Ref, err)
			}
			status = parsed
		}

		task := &domain.Task{
			ID:             uuid.New().String(),
			ProjectID:      project.ID,
			AssigneeID:     t.Assignee,
			Title:          strings.TrimSpace(t.Title),
			Description:    t.Description,
			Status:         status,
			EstimatedHours: t.EstimatedHours,
			ActualHours:    t.ActualHours,
			IsBacklog:      t.Backlog,
			// Distinct creation instants keep file order as the tie-breaker.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt: now,
		}
		if t.SprintRef != "" {
			sid := sprintIDs[t.SprintRef]
			task.SprintID = &sid
		}
		if !t.Backlog {
			task.SetOrder(nextOrder[t.Assignee])
			nextOrder[t.Assignee]++
		}

		taskIDs[t.Ref] = task.ID
		tasks = append(tasks, task)
	}

	deps := make([]*domain.TaskDependency, 0, len(schema.Dependencies))
	for _, d := range schema.Dependencies {
		typ := domain.FinishToStart
		if d.Type != "" {
			typ = domain.DependencyType(d.Type)
		}
		deps = append(deps, &domain.TaskDependency{
			TaskID:      taskIDs[d.TaskRef],
			DependsOnID: taskIDs[d.DependsOnRef],
			Type:        typ,
			LagDays:     d.LagDays,
		})
	}

	return &Plan{
		Team:         team,
		Members:      members,
		Project:      project,
		Sprints:      sprints,
		Tasks:        tasks,
		Dependencies: deps,
	}, nil
}
