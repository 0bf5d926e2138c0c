package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlanSchema is the file format for importing a whole plan: one team, its
// members, one project and the project's sprints, tasks and dependencies.
// Items reference each other through file-local refs.
type PlanSchema struct {
	Team         TeamImport         `json:"team" yaml:"team"`
	Project      ProjectImport      `json:"project" yaml:"project"`
	Sprints      []SprintImport     `json:"sprints,omitempty" yaml:"sprints,omitempty"`
	Tasks        []TaskImport       `json:"tasks" yaml:"tasks"`
	Dependencies []DependencyImport `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

type TeamImport struct {
	Name    string         `json:"name" yaml:"name"`
	Members []MemberImport `json:"members" yaml:"members"`
}

// MemberImport declares a team member. An empty WorkDays means Monday to
// Friday; WorkDays accepts names ("mon,tue") or numbers with Sunday = 0.
type MemberImport struct {
	User        string  `json:"user" yaml:"user"`
	DisplayName string  `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	DailyHours  float64 `json:"daily_hours" yaml:"daily_hours"`
	WorkDays    string  `json:"work_days,omitempty" yaml:"work_days,omitempty"`
}

type ProjectImport struct {
	ShortID   string `json:"short_id" yaml:"short_id"`
	Name      string `json:"name" yaml:"name"`
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
}

type SprintImport struct {
	Ref  string `json:"ref" yaml:"ref"`
	Name string `json:"name" yaml:"name"`
}

// TaskImport declares a task. Tasks keep their file order per assignee.
type TaskImport struct {
	Ref            string  `json:"ref" yaml:"ref"`
	Title          string  `json:"title" yaml:"title"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Assignee       string  `json:"assignee" yaml:"assignee"`
	SprintRef      string  `json:"sprint_ref,omitempty" yaml:"sprint_ref,omitempty"`
	EstimatedHours float64 `json:"estimated_hours" yaml:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours,omitempty" yaml:"actual_hours,omitempty"`
	Status         string  `json:"status,omitempty" yaml:"status,omitempty"`
	Backlog        bool    `json:"backlog,omitempty" yaml:"backlog,omitempty"`
}

// DependencyImport says TaskRef depends on DependsOnRef.
type DependencyImport struct {
	TaskRef      string `json:"task_ref" yaml:"task_ref"`
	DependsOnRef string `json:"depends_on_ref" yaml:"depends_on_ref"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	LagDays      int    `json:"lag_days,omitempty" yaml:"lag_days,omitempty"`
}

// LoadFile reads a plan file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func LoadFile(path string) (*PlanSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan PlanSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	}
	return &plan, nil
}
