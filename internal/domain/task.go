package domain

import (
	"math"
	"time"
)

type Task struct {
	ID          string
	ProjectID   string
	AssigneeID  string
	SprintID    *string
	Title       string
	Description string
	Status      TaskStatus

	EstimatedHours float64
	ActualHours    float64

	// Order is the per-assignee sequence within a project. It is nil exactly
	// when the task sits in the backlog.
	Order     *int
	IsBacklog bool

	// Realized schedule.
	StartDate *time.Time
	EndDate   *time.Time

	// Baseline schedule, derived from estimated hours only.
	ExpectedStartDate *time.Time
	ExpectedEndDate   *time.Time

	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the task has not been deleted.
func (t *Task) IsActive() bool {
	return t.DeletedAt == nil
}

// IsScheduled reports whether the task takes part in calendar placement.
func (t *Task) IsScheduled() bool {
	return t.IsActive() && !t.IsBacklog
}

// HoursToOccupy returns the hours the task claims on its assignee's calendar:
// actual hours once completed, otherwise the larger of estimated and actual
// so that under-reported progress never makes the plan look shorter.
func (t *Task) HoursToOccupy() float64 {
	if t.Status.IsTerminal() {
		return t.ActualHours
	}
	return math.Max(t.EstimatedHours, t.ActualHours)
}

// OrderValue returns the order or -1 when the task has none.
func (t *Task) OrderValue() int {
	if t.Order == nil {
		return -1
	}
	return *t.Order
}

// SetOrder assigns a non-backlog order.
func (t *Task) SetOrder(order int) {
	o := order
	t.Order = &o
}

// SendToBacklog clears the order and all four schedule dates.
func (t *Task) SendToBacklog(now time.Time) {
	t.IsBacklog = true
	t.Order = nil
	t.ClearSchedule()
	t.UpdatedAt = now
}

// ClearSchedule removes realized and expected dates.
func (t *Task) ClearSchedule() {
	t.StartDate = nil
	t.EndDate = nil
	t.ExpectedStartDate = nil
	t.ExpectedEndDate = nil
}

// InSprint reports whether the task belongs to the given sprint.
func (t *Task) InSprint(sprintID string) bool {
	return t.SprintID != nil && *t.SprintID == sprintID
}
