package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
)

// SQLiteSprintRepo implements SprintRepo using a SQLite database.
type SQLiteSprintRepo struct {
	db db.DBTX
}

// NewSQLiteSprintRepo creates a new SQLiteSprintRepo.
func NewSQLiteSprintRepo(conn db.DBTX) *SQLiteSprintRepo {
	return &SQLiteSprintRepo{db: conn}
}

const sprintColumns = `id, project_id, name, position, status, completed_at, created_at`

func (r *SQLiteSprintRepo) Create(ctx context.Context, s *domain.Sprint) error {
	query := `INSERT INTO sprints (` + sprintColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectID,
		s.Name,
		s.Position,
		string(s.Status),
		nullableTimeToString(s.CompletedAt, timestampLayout),
		s.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting sprint: %w", err)
	}
	return nil
}

func (r *SQLiteSprintRepo) GetByID(ctx context.Context, id string) (*domain.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints WHERE id = ?`
	s, err := scanSprint(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sprint %s: %w", id, domain.ErrSprintNotFound)
		}
		return nil, fmt.Errorf("scanning sprint: %w", err)
	}
	return s, nil
}

// ListByProject returns sprints ordered by position.
func (r *SQLiteSprintRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints WHERE project_id = ? ORDER BY position, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sprints: %w", err)
	}
	defer rows.Close()

	var sprints []*domain.Sprint
	for rows.Next() {
		s, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sprint row: %w", err)
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sprints: %w", err)
	}
	return sprints, nil
}

func (r *SQLiteSprintRepo) Update(ctx context.Context, s *domain.Sprint) error {
	query := `UPDATE sprints SET name = ?, position = ?, status = ?, completed_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.Position,
		string(s.Status),
		nullableTimeToString(s.CompletedAt, timestampLayout),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sprint: %w", err)
	}
	return requireAffected(res, fmt.Errorf("sprint %s: %w", s.ID, domain.ErrSprintNotFound))
}

func scanSprint(sc scanner) (*domain.Sprint, error) {
	var s domain.Sprint
	var status, createdAt string
	var completedAt sql.NullString
	if err := sc.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Position, &status, &completedAt, &createdAt); err != nil {
		return nil, err
	}
	s.Status = domain.SprintStatus(status)
	s.CompletedAt = parseNullableTime(completedAt, timestampLayout)

	var err error
	if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &s, nil
}
