package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithStartDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = domain.DatePtr(d)
	}
}

func WithTeam(teamID string) ProjectOption {
	return func(p *domain.Project) {
		p.TeamID = &teamID
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1) % 10000
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestTeam(name string) *domain.Team {
	return &domain.Team{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Member options
type MemberOption func(*domain.TeamMember)

func WithDailyHours(h float64) MemberOption {
	return func(m *domain.TeamMember) {
		m.Capacity.DailyWorkHours = h
	}
}

func WithWorkDays(days ...time.Weekday) MemberOption {
	return func(m *domain.TeamMember) {
		m.Capacity.WorkDays = domain.NewWeekdaySet(days...)
	}
}

// NewTestMember defaults to eight hours Monday to Friday.
func NewTestMember(teamID, userID string, opts ...MemberOption) *domain.TeamMember {
	now := time.Now().UTC()
	m := &domain.TeamMember{
		TeamID:      teamID,
		UserID:      userID,
		DisplayName: userID,
		Capacity:    domain.WorkCapacity{DailyWorkHours: 8, WorkDays: domain.WeekdaysMonFri},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewTestSprint(projectID, name string, position int) *domain.Sprint {
	return &domain.Sprint{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Position:  position,
		Status:    domain.SprintPlanned,
		CreatedAt: time.Now().UTC(),
	}
}

// Task options
type TaskOption func(*domain.Task)

func WithEstimate(h float64) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedHours = h
	}
}

func WithActual(h float64) TaskOption {
	return func(t *domain.Task) {
		t.ActualHours = h
	}
}

func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithOrder(o int) TaskOption {
	return func(t *domain.Task) {
		t.SetOrder(o)
	}
}

func WithSprint(sprintID string) TaskOption {
	return func(t *domain.Task) {
		t.SprintID = &sprintID
	}
}

func InBacklog() TaskOption {
	return func(t *domain.Task) {
		t.IsBacklog = true
		t.Order = nil
	}
}

func WithCreatedAt(ts time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = ts
		t.UpdatedAt = ts
	}
}

// NewTestTask creates a todo task with an eight hour estimate and no order.
func NewTestTask(projectID, assigneeID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		AssigneeID:     assigneeID,
		Title:          title,
		Status:         domain.TaskTodo,
		EstimatedHours: 8,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
