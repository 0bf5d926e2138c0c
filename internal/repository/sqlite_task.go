package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, project_id, assignee_id, sprint_id, title, description, status,
	estimated_hours, actual_hours, sort_order, is_backlog,
	start_date, end_date, expected_start_date, expected_end_date,
	deleted_at, created_at, updated_at`

// taskOrdering sorts backlog (NULL order) rows last and breaks ties by creation.
const taskOrdering = ` ORDER BY sort_order IS NULL, sort_order, created_at, id`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.AssigneeID,
		nullableStringToValue(t.SprintID),
		t.Title,
		t.Description,
		string(t.Status),
		t.EstimatedHours,
		t.ActualHours,
		nullableIntToValue(t.Order),
		boolToInt(t.IsBacklog),
		nullableTimeToString(t.StartDate, dateLayout),
		nullableTimeToString(t.EndDate, dateLayout),
		nullableTimeToString(t.ExpectedStartDate, dateLayout),
		nullableTimeToString(t.ExpectedEndDate, dateLayout),
		nullableTimeToString(t.DeletedAt, timestampLayout),
		t.CreatedAt.UTC().Format(timestampLayout),
		t.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET assignee_id = ?, sprint_id = ?, title = ?, description = ?, status = ?,
		estimated_hours = ?, actual_hours = ?, sort_order = ?, is_backlog = ?,
		start_date = ?, end_date = ?, expected_start_date = ?, expected_end_date = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.AssigneeID,
		nullableStringToValue(t.SprintID),
		t.Title,
		t.Description,
		string(t.Status),
		t.EstimatedHours,
		t.ActualHours,
		nullableIntToValue(t.Order),
		boolToInt(t.IsBacklog),
		nullableTimeToString(t.StartDate, dateLayout),
		nullableTimeToString(t.EndDate, dateLayout),
		nullableTimeToString(t.ExpectedStartDate, dateLayout),
		nullableTimeToString(t.ExpectedEndDate, dateLayout),
		t.UpdatedAt.UTC().Format(timestampLayout),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, fmt.Errorf("task %s: %w", t.ID, domain.ErrTaskNotFound))
}

func (r *SQLiteTaskRepo) UpdateSchedule(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET sort_order = ?, start_date = ?, end_date = ?,
		expected_start_date = ?, expected_end_date = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableIntToValue(t.Order),
		nullableTimeToString(t.StartDate, dateLayout),
		nullableTimeToString(t.EndDate, dateLayout),
		nullableTimeToString(t.ExpectedStartDate, dateLayout),
		nullableTimeToString(t.ExpectedEndDate, dateLayout),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task schedule: %w", err)
	}
	return requireAffected(res, fmt.Errorf("task %s: %w", t.ID, domain.ErrTaskNotFound))
}

// SoftDelete marks the task deleted and drops it out of the sequence.
func (r *SQLiteTaskRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ts := at.UTC().Format(timestampLayout)
	query := `UPDATE tasks SET deleted_at = ?, sort_order = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, ts, ts, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res, fmt.Errorf("task %s: %w", id, domain.ErrTaskNotFound))
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string, includeBacklog bool) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? AND deleted_at IS NULL`
	if !includeBacklog {
		query += ` AND is_backlog = 0`
	}
	query += ` ORDER BY assignee_id, sort_order IS NULL, sort_order, created_at, id`
	return r.list(ctx, "listing project tasks", query, projectID)
}

// ListByAssignee returns the active non-backlog tasks of one assignee in a
// project, in sequence order.
func (r *SQLiteTaskRepo) ListByAssignee(ctx context.Context, projectID, assigneeID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE project_id = ? AND assignee_id = ? AND deleted_at IS NULL AND is_backlog = 0` + taskOrdering
	return r.list(ctx, "listing assignee tasks", query, projectID, assigneeID)
}

func (r *SQLiteTaskRepo) ListBySprint(ctx context.Context, sprintID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE sprint_id = ? AND deleted_at IS NULL` + taskOrdering
	return r.list(ctx, "listing sprint tasks", query, sprintID)
}

// ListAssignees returns every assignee with at least one active non-backlog
// task in the project.
func (r *SQLiteTaskRepo) ListAssignees(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT DISTINCT assignee_id FROM tasks
		WHERE project_id = ? AND deleted_at IS NULL AND is_backlog = 0
		ORDER BY assignee_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing assignees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning assignee: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignees: %w", err)
	}
	return ids, nil
}

// MaxEndDate returns nil when no active non-backlog task has an end date.
func (r *SQLiteTaskRepo) MaxEndDate(ctx context.Context, projectID string) (*time.Time, error) {
	query := `SELECT MAX(end_date) FROM tasks
		WHERE project_id = ? AND deleted_at IS NULL AND is_backlog = 0 AND end_date IS NOT NULL`
	var maxEnd sql.NullString
	if err := r.db.QueryRowContext(ctx, query, projectID).Scan(&maxEnd); err != nil {
		return nil, fmt.Errorf("querying max end date: %w", err)
	}
	return parseNullableTime(maxEnd, dateLayout), nil
}

func (r *SQLiteTaskRepo) list(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var sprintID, startDate, endDate, expStart, expEnd, deletedAt sql.NullString
	var order sql.NullInt64
	var status, createdAt, updatedAt string
	var backlog int

	err := s.Scan(
		&t.ID, &t.ProjectID, &t.AssigneeID, &sprintID, &t.Title, &t.Description, &status,
		&t.EstimatedHours, &t.ActualHours, &order, &backlog,
		&startDate, &endDate, &expStart, &expEnd,
		&deletedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.SprintID = nullString(sprintID)
	t.Order = nullInt(order)
	t.IsBacklog = backlog != 0
	t.StartDate = parseNullableTime(startDate, dateLayout)
	t.EndDate = parseNullableTime(endDate, dateLayout)
	t.ExpectedStartDate = parseNullableTime(expStart, dateLayout)
	t.ExpectedEndDate = parseNullableTime(expEnd, dateLayout)
	t.DeletedAt = parseNullableTime(deletedAt, timestampLayout)

	if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}
