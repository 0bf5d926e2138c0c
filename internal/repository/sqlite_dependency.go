package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
)

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.TaskDependency) error {
	query := `INSERT INTO task_dependencies (task_id, depends_on_id, type, lag_days) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, d.TaskID, d.DependsOnID, string(d.Type), d.LagDays)
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, taskID, dependsOnID string) error {
	query := `DELETE FROM task_dependencies WHERE task_id = ? AND depends_on_id = ?`
	res, err := r.db.ExecContext(ctx, query, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	return requireAffected(res, fmt.Errorf("dependency %s -> %s: %w", taskID, dependsOnID, domain.ErrInvalidInput))
}

// DeleteByTask removes every edge touching the task in either direction.
func (r *SQLiteDependencyRepo) DeleteByTask(ctx context.Context, taskID string) error {
	query := `DELETE FROM task_dependencies WHERE task_id = ? OR depends_on_id = ?`
	if _, err := r.db.ExecContext(ctx, query, taskID, taskID); err != nil {
		return fmt.Errorf("deleting task dependencies: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) ListPredecessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error) {
	query := `SELECT task_id, depends_on_id, type, lag_days FROM task_dependencies
		WHERE task_id = ? ORDER BY depends_on_id`
	return r.list(ctx, "listing predecessors", query, taskID)
}

func (r *SQLiteDependencyRepo) ListSuccessors(ctx context.Context, taskID string) ([]domain.TaskDependency, error) {
	query := `SELECT task_id, depends_on_id, type, lag_days FROM task_dependencies
		WHERE depends_on_id = ? ORDER BY task_id`
	return r.list(ctx, "listing successors", query, taskID)
}

// ListByProject returns edges whose dependent task belongs to the project.
func (r *SQLiteDependencyRepo) ListByProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error) {
	query := `SELECT d.task_id, d.depends_on_id, d.type, d.lag_days
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.task_id
		WHERE t.project_id = ?
		ORDER BY d.task_id, d.depends_on_id`
	return r.list(ctx, "listing project dependencies", query, projectID)
}

func (r *SQLiteDependencyRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.TaskDependency, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func scanDependencies(rows *sql.Rows) ([]domain.TaskDependency, error) {
	var deps []domain.TaskDependency
	for rows.Next() {
		var d domain.TaskDependency
		var typ string
		if err := rows.Scan(&d.TaskID, &d.DependsOnID, &typ, &d.LagDays); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		d.Type = domain.DependencyType(typ)
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
