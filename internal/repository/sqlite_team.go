package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/workplan/internal/db"
	"github.com/alexanderramin/workplan/internal/domain"
)

// SQLiteTeamRepo implements TeamRepo using a SQLite database.
type SQLiteTeamRepo struct {
	db db.DBTX
}

// NewSQLiteTeamRepo creates a new SQLiteTeamRepo.
func NewSQLiteTeamRepo(conn db.DBTX) *SQLiteTeamRepo {
	return &SQLiteTeamRepo{db: conn}
}

const memberColumns = `team_id, user_id, display_name, daily_work_hours, work_days, created_at, updated_at`

func (r *SQLiteTeamRepo) Create(ctx context.Context, t *domain.Team) error {
	query := `INSERT INTO teams (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.CreatedAt.UTC().Format(timestampLayout)); err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}
	return nil
}

func (r *SQLiteTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM teams WHERE id = ?`, id)
}

func (r *SQLiteTeamRepo) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM teams WHERE name = ?`, name)
}

func (r *SQLiteTeamRepo) List(ctx context.Context) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams: %w", err)
	}
	return teams, nil
}

// UpsertMember inserts the member or replaces the capacity of an existing one.
func (r *SQLiteTeamRepo) UpsertMember(ctx context.Context, m *domain.TeamMember) error {
	query := `INSERT INTO team_members (` + memberColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (team_id, user_id) DO UPDATE SET
			display_name = excluded.display_name,
			daily_work_hours = excluded.daily_work_hours,
			work_days = excluded.work_days,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		m.TeamID,
		m.UserID,
		m.DisplayName,
		m.Capacity.DailyWorkHours,
		int(m.Capacity.WorkDays),
		m.CreatedAt.UTC().Format(timestampLayout),
		m.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("upserting team member: %w", err)
	}
	return nil
}

func (r *SQLiteTeamRepo) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = ? AND user_id = ?`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, teamID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s in team %s: %w", userID, teamID, domain.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("scanning team member: %w", err)
	}
	return m, nil
}

func (r *SQLiteTeamRepo) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE team_id = ? ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team members: %w", err)
	}
	return members, nil
}

func (r *SQLiteTeamRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	return requireAffected(res, fmt.Errorf("user %s in team %s: %w", userID, teamID, domain.ErrMemberNotFound))
}

func (r *SQLiteTeamRepo) ResolveCapacity(ctx context.Context, teamID, userID string) (domain.WorkCapacity, error) {
	m, err := r.GetMember(ctx, teamID, userID)
	if err != nil {
		return domain.WorkCapacity{}, err
	}
	if err := m.Capacity.Validate(); err != nil {
		return domain.WorkCapacity{}, fmt.Errorf("user %s in team %s: %w", userID, teamID, err)
	}
	return m.Capacity, nil
}

func (r *SQLiteTeamRepo) getOne(ctx context.Context, query, key string) (*domain.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", key, domain.ErrTeamNotFound)
		}
		return nil, fmt.Errorf("scanning team: %w", err)
	}
	return t, nil
}

func scanTeam(s scanner) (*domain.Team, error) {
	var t domain.Team
	var createdAt string
	if err := s.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &t, nil
}

func scanMember(s scanner) (*domain.TeamMember, error) {
	var m domain.TeamMember
	var workDays int
	var createdAt, updatedAt string
	if err := s.Scan(&m.TeamID, &m.UserID, &m.DisplayName, &m.Capacity.DailyWorkHours, &workDays, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.Capacity.WorkDays = domain.WeekdaySet(workDays)

	var err error
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &m, nil
}
