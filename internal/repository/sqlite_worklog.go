package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
)

// SQLiteWorkLogRepo implements WorkLogRepo using a SQLite database.
type SQLiteWorkLogRepo struct {
	db db.DBTX
}

// NewSQLiteWorkLogRepo creates a new SQLiteWorkLogRepo.
func NewSQLiteWorkLogRepo(conn db.DBTX) *SQLiteWorkLogRepo {
	return &SQLiteWorkLogRepo{db: conn}
}

func (r *SQLiteWorkLogRepo) Create(ctx context.Context, w *domain.WorkLog) error {
	query := `INSERT INTO work_logs (id, task_id, hours, logged_at, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.TaskID,
		w.Hours,
		w.LoggedAt.UTC().Format(timestampLayout),
		w.Note,
		w.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting work log: %w", err)
	}
	return nil
}

func (r *SQLiteWorkLogRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.WorkLog, error) {
	query := `SELECT id, task_id, hours, logged_at, note, created_at FROM work_logs
		WHERE task_id = ? ORDER BY logged_at, id`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing work logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.WorkLog
	for rows.Next() {
		var w domain.WorkLog
		var loggedAt, createdAt string
		if err := rows.Scan(&w.ID, &w.TaskID, &w.Hours, &loggedAt, &w.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning work log: %w", err)
		}
		if w.LoggedAt, err = parseTimestamp(loggedAt); err != nil {
			return nil, fmt.Errorf("parsing logged_at: %w", err)
		}
		if w.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		logs = append(logs, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work logs: %w", err)
	}
	return logs, nil
}

func (r *SQLiteWorkLogRepo) SumHours(ctx context.Context, taskID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(hours), 0) FROM work_logs WHERE task_id = ?`, taskID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing work log hours: %w", err)
	}
	return total, nil
}
