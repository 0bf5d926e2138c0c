package domain

import "time"

// Sprint groups tasks. Position orders sprints inside a project; it affects
// recalculation order only, never the calendar.
type Sprint struct {
	ID          string
	ProjectID   string
	Name        string
	Position    int
	Status      SprintStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
}
