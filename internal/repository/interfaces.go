package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	// GetByID returns deleted tasks too; callers check IsActive.
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	// UpdateSchedule writes only the order and the four schedule dates.
	UpdateSchedule(ctx context.Context, t *domain.Task) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ListByProject(ctx context.Context, projectID string, includeBacklog bool) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, projectID, assigneeID string) ([]*domain.Task, error)
	ListBySprint(ctx context.Context, sprintID string) ([]*domain.Task, error)
	ListAssignees(ctx context.Context, projectID string) ([]string, error)
	MaxEndDate(ctx context.Context, projectID string) (*time.Time, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	SetActualExpectedEndDate(ctx context.Context, id string, end time.Time) error
}

type SprintRepo interface {
	Create(ctx context.Context, s *domain.Sprint) error
	GetByID(ctx context.Context, id string) (*domain.Sprint, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Sprint, error)
	Update(ctx context.Context, s *domain.Sprint) error
}

type TeamRepo interface {
	Create(ctx context.Context, t *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByName(ctx context.Context, name string) (*domain.Team, error)
	List(ctx context.Context) ([]*domain.Team, error)
	UpsertMember(ctx context.Context, m *domain.TeamMember) error
	GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	// ResolveCapacity returns the validated capacity of a member.
	ResolveCapacity(ctx context.Context, teamID, userID string) (domain.WorkCapacity, error)
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.TaskDependency) error
	Delete(ctx context.Context, taskID, dependsOnID string) error
	DeleteByTask(ctx context.Context, taskID string) error
	// ListPredecessors returns the edges where taskID is the dependent.
	ListPredecessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error)
	// ListSuccessors returns the edges that depend on taskID.
	ListSuccessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error)
}

type WorkLogRepo interface {
	Create(ctx context.Context, w *domain.WorkLog) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.WorkLog, error)
	SumHours(ctx context.Context, taskID string) (float64, error)
}
