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

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, short_id, name, team_id, start_date, actual_expected_end_date, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ShortID,
		p.Name,
		nullableStringToValue(p.TeamID),
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.ActualExpectedEndDate, dateLayout),
		p.CreatedAt.UTC().Format(timestampLayout),
		p.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *SQLiteProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(short_id) = UPPER(?)`
	return r.scanOne(r.db.QueryRowContext(ctx, query, shortID), shortID)
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at, short_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Update writes user-editable fields. The engine-owned end date is left alone.
func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET short_id = ?, name = ?, team_id = ?, start_date = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.ShortID,
		p.Name,
		nullableStringToValue(p.TeamID),
		nullableTimeToString(p.StartDate, dateLayout),
		p.UpdatedAt.UTC().Format(timestampLayout),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireAffected(res, fmt.Errorf("project %s: %w", p.ID, domain.ErrProjectNotFound))
}

func (r *SQLiteProjectRepo) SetActualExpectedEndDate(ctx context.Context, id string, end time.Time) error {
	query := `UPDATE projects SET actual_expected_end_date = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, domain.DateOf(end).Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("updating project end date: %w", err)
	}
	return requireAffected(res, fmt.Errorf("project %s: %w", id, domain.ErrProjectNotFound))
}

func (r *SQLiteProjectRepo) scanOne(row *sql.Row, key string) (*domain.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", key, domain.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return p, nil
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var teamID, startDate, endDate sql.NullString
	var createdAt, updatedAt string

	if err := s.Scan(&p.ID, &p.ShortID, &p.Name, &teamID, &startDate, &endDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.TeamID = nullString(teamID)
	p.StartDate = parseNullableTime(startDate, dateLayout)
	p.ActualExpectedEndDate = parseNullableTime(endDate, dateLayout)

	var err error
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
