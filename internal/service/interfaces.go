package service

import (
	"context"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/importer"
)

// AssigneeRef identifies one assignee's task list inside a project.
type AssigneeRef struct {
	ProjectID  string
	AssigneeID string
}

// Impact names what a committed mutation may have moved.
type Impact struct {
	// ProjectID receives the aggregate refresh.
	ProjectID string
	Assignees []AssigneeRef
	// Roots are tasks whose own end date or completion state changed directly.
	Roots []string
}

// ProjectSchedule is the outcome of recalculating every assignee of a project.
type ProjectSchedule struct {
	ProjectID  string
	Assignees  []*AssigneeSchedule
	ProjectEnd *time.Time
}

type ScheduleService interface {
	RecalculateAssignee(ctx context.Context, projectID, assigneeID string) (*AssigneeSchedule, error)
	// RecalculateProject recalculates every assignee in parallel. A failing
	// assignee does not stop the others; all failures are joined.
	RecalculateProject(ctx context.Context, projectID string) (*ProjectSchedule, error)
	PropagateFrom(ctx context.Context, taskID string) (*PropagationResult, error)
	RefreshProjectEndDate(ctx context.Context, projectID string) (*time.Time, error)
	// Reconcile runs the full trigger chain for a committed mutation:
	// recalculation, then propagation, then the project aggregate.
	Reconcile(ctx context.Context, impact Impact) error
}

// ReorderMove is one explicit {task, order} pair of a bulk reorder.
type ReorderMove struct {
	TaskID string
	Order  int
}

type OrderingService interface {
	// AppendToEnd moves a task behind every other task of its assignee.
	AppendToEnd(ctx context.Context, taskID string) (*domain.Task, error)
	MoveToSprint(ctx context.Context, taskID string, sprintID *string) (*domain.Task, error)
	BulkReorder(ctx context.Context, projectID string, moves []ReorderMove) error
	Compact(ctx context.Context, projectID, assigneeID string) error
	CompleteSprint(ctx context.Context, sprintID string) (*domain.Sprint, error)
}

// TaskPatch carries optional field changes. Nil fields are left alone.
type TaskPatch struct {
	Title          *string
	Description    *string
	AssigneeID     *string
	Status         *domain.TaskStatus
	EstimatedHours *float64
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string, includeBacklog bool) ([]*domain.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	LogHours(ctx context.Context, taskID string, hours float64, note string) (*domain.WorkLog, error)
	ListWorkLogs(ctx context.Context, taskID string) ([]*domain.WorkLog, error)
	MoveToBacklog(ctx context.Context, taskID string) (*domain.Task, error)
	MoveFromBacklog(ctx context.Context, taskID string) (*domain.Task, error)
	Delete(ctx context.Context, taskID string) error
}

type DependencyService interface {
	Add(ctx context.Context, d *domain.TaskDependency) error
	Remove(ctx context.Context, taskID, dependsOnID string) error
	ListForTask(ctx context.Context, taskID string) (predecessors, successors []domain.TaskDependency, err error)
	ListByProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error)
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts either a project ID or a short ID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
}

type TeamService interface {
	Create(ctx context.Context, name string) (*domain.Team, error)
	Resolve(ctx context.Context, ref string) (*domain.Team, error)
	List(ctx context.Context) ([]*domain.Team, error)
	SetMember(ctx context.Context, m *domain.TeamMember) error
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
}

type SprintService interface {
	Create(ctx context.Context, projectID, name string) (*domain.Sprint, error)
	GetByID(ctx context.Context, id string) (*domain.Sprint, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Sprint, error)
}

// ImportResult holds the outcome of a plan import.
type ImportResult struct {
	Team            *domain.Team
	Project         *domain.Project
	MemberCount     int
	SprintCount     int
	TaskCount       int
	DependencyCount int
	Schedule        *ProjectSchedule
}

type ImportService interface {
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
	ImportPlan(ctx context.Context, plan *importer.PlanSchema) (*ImportResult, error)
}
