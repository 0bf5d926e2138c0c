package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

const dateLayout = "2006-01-02"

func parseDate(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q (use YYYY-MM-DD): %w", flag, v, domain.ErrInvalidInput)
	}
	return &d, nil
}

// resolveProject accepts a short ID, a full ID or a unique ID prefix.
func resolveProject(ctx context.Context, app *App, input string) (*domain.Project, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("project is required (use --project)")
	}
	p, err := app.Projects.Resolve(ctx, input)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, err
	}

	projects, err := app.Projects.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*domain.Project
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project %q: %w", input, domain.ErrProjectNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveTask accepts a full task ID or a prefix unique across projects.
func resolveTask(ctx context.Context, app *App, input string) (*domain.Task, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("task ID is required")
	}
	t, err := app.Tasks.GetByID(ctx, input)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, err
	}

	projects, err := app.Projects.List(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*domain.Task
	for _, p := range projects {
		tasks, err := app.Tasks.ListByProject(ctx, p.ID, true)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if strings.HasPrefix(t.ID, input) {
				matches = append(matches, t)
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task %q: %w", input, domain.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveSprint finds a sprint of the project by name (case-insensitive),
// ID or ID prefix.
func resolveSprint(ctx context.Context, app *App, projectID, input string) (*domain.Sprint, error) {
	sprints, err := app.Sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, s := range sprints {
		if s.ID == input || strings.EqualFold(s.Name, input) {
			return s, nil
		}
	}
	var matches []*domain.Sprint
	for _, s := range sprints {
		if strings.HasPrefix(s.ID, input) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("sprint %q in project: %w", input, domain.ErrSprintNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("sprint ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func sprintNames(ctx context.Context, app *App, projectID string) (map[string]string, error) {
	sprints, err := app.Sprints.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(sprints))
	for _, s := range sprints {
		names[s.ID] = s.Name
	}
	return names, nil
}
