package service

import (
	"context"
	"time"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/repository"
)

// TaskStore is the task access the scheduling engine needs.
type TaskStore interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByAssignee(ctx context.Context, projectID, assigneeID string) ([]*domain.Task, error)
	ListAssignees(ctx context.Context, projectID string) ([]string, error)
	UpdateSchedule(ctx context.Context, t *domain.Task) error
	MaxEndDate(ctx context.Context, projectID string) (*time.Time, error)
}

// ProjectStore provides the schedule anchor and receives the aggregate end date.
type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	SetActualExpectedEndDate(ctx context.Context, id string, end time.Time) error
}

type SprintStore interface {
	ListByProject(ctx context.Context, projectID string) ([]*domain.Sprint, error)
}

type DependencyStore interface {
	ListPredecessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error)
	ListSuccessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error)
}

// CapacityResolver looks up a member's work capacity keyed by (team, user).
type CapacityResolver interface {
	ResolveCapacity(ctx context.Context, teamID, userID string) (domain.WorkCapacity, error)
}

// Stores bundles the collaborators of one engine run.
type Stores struct {
	Tasks        TaskStore
	Projects     ProjectStore
	Sprints      SprintStore
	Dependencies DependencyStore
	Capacity     CapacityResolver
}

// Transactor runs fn with stores bound to a single unit of work. An error
// returned from fn discards every write fn made. Implementations serialize
// InTx calls: the engine rewrites dependents owned by other assignees inside
// one call and relies on no other call interleaving with it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type sqliteTransactor struct {
	uow db.UnitOfWork
}

// NewSQLiteTransactor binds engine stores to tx-scoped SQLite repositories.
func NewSQLiteTransactor(uow db.UnitOfWork) Transactor {
	return &sqliteTransactor{uow: uow}
}

func (t *sqliteTransactor) InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return t.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, sqliteStores(tx))
	})
}

func sqliteStores(tx db.DBTX) Stores {
	return Stores{
		Tasks:        repository.NewSQLiteTaskRepo(tx),
		Projects:     repository.NewSQLiteProjectRepo(tx),
		Sprints:      repository.NewSQLiteSprintRepo(tx),
		Dependencies: repository.NewSQLiteDependencyRepo(tx),
		Capacity:     repository.NewSQLiteTeamRepo(tx),
	}
}
